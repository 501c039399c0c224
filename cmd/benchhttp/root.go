package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/benchhttp/config"
	"github.com/kbukum/benchhttp/logger"
	"github.com/kbukum/benchhttp/version"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchhttp",
		Short: "Benchmark HTTP GET and JSON decode strategies",
		Long: `benchhttp compares strategies for fetching a JSON search response and
decoding it into typed records: buffering the body, decoding while the
response is held open, streaming straight into the decoder, and drawing the
client from a named pool.

Each strategy is measured under several GC jobs. Results are logged, printed
and optionally written as a Markdown report.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: ./cmd/benchhttp/config.yml, ./config/config.yml or ./config.yml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration named by --config, or discovers one.
func loadConfig(cmd *cobra.Command) (*config.BenchConfig, error) {
	var opts []config.LoaderOption
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	return config.Load(opts...)
}

// initLogger installs the global logger from cfg, honoring --verbose.
func initLogger(cmd *cobra.Command, cfg *config.BenchConfig) *logger.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	logger.Init(&cfg.Logging)
	return logger.WithComponent("cli")
}
