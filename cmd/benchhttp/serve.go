package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/benchhttp/config"
	"github.com/kbukum/benchhttp/fixture"
	"github.com/kbukum/benchhttp/logger"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a canned search response",
		Long: `Serve starts an HTTP server answering /search.json with a fixed payload,
so benchmarks can run without reaching the public search service.

Examples:
  # Single-document response on 127.0.0.1:8089
  benchhttp serve

  # 500-document generated payload with 20ms of latency
  benchhttp serve --docs 500 --delay 20ms

  # Always answer 503
  benchhttp serve --status 503`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("host", "", "Listen host")
	cmd.Flags().IntP("port", "p", 0, "Listen port")
	cmd.Flags().StringP("file", "f", "", "Serve this JSON file")
	cmd.Flags().Int("docs", 0, "Generate a payload with this many documents")
	cmd.Flags().Int("status", 0, "Response status")
	cmd.Flags().Duration("delay", 0, "Delay before the response headers")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	log := initLogger(cmd, cfg)

	srv, err := fixture.NewServer(cfg.Server, cfg.Fixture, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("fixture serving", logger.Fields(logger.FieldURL, srv.BaseURL()))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// applyServeFlags copies explicitly set flags over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.BenchConfig) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("file") {
		cfg.Fixture.File, _ = flags.GetString("file")
	}
	if flags.Changed("docs") {
		cfg.Fixture.Docs, _ = flags.GetInt("docs")
	}
	if flags.Changed("status") {
		cfg.Fixture.Status, _ = flags.GetInt("status")
	}
	if flags.Changed("delay") {
		cfg.Fixture.Delay, _ = flags.GetDuration("delay")
	}
}
