package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/benchhttp/bench"
	"github.com/kbukum/benchhttp/config"
	"github.com/kbukum/benchhttp/fixture"
	"github.com/kbukum/benchhttp/httpclient"
	"github.com/kbukum/benchhttp/logger"
	"github.com/kbukum/benchhttp/observability"
	"github.com/kbukum/benchhttp/report"
	"github.com/kbukum/benchhttp/search"
	"github.com/kbukum/benchhttp/security"
	"github.com/kbukum/benchhttp/strategy"
)

const instrumentationName = "github.com/kbukum/benchhttp/bench"

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the strategy benchmark",
		Long: `Run measures every selected strategy under every selected GC job and
prints one summary per pair.

Examples:
  # All strategies and jobs against the configured target
  benchhttp run

  # Two strategies, one job, against an in-process fixture server
  benchhttp run --local --strategy stream-direct --strategy full-buffer --job Server

  # Fixed wall-clock budget per run with four concurrent workers
  benchhttp run --duration 10s --concurrency 4 --output results/bench.md`,
		Args: cobra.NoArgs,
		RunE: runBenchCmd,
	}

	cmd.Flags().StringSliceP("strategy", "s", nil,
		"Strategies to run (full-buffer, headers-deferred, headers-scoped, stream-direct, pooled-client)")
	cmd.Flags().StringSliceP("job", "j", nil,
		"Jobs to run (ServerForce, Server, Workstation, WorkstationForce)")
	cmd.Flags().IntP("iterations", "n", 0, "Measured iterations per run")
	cmd.Flags().Int("warmup", 0, "Unmeasured warm-up iterations per run")
	cmd.Flags().DurationP("duration", "d", 0, "Wall-clock budget per run (without --iterations, the only limit)")
	cmd.Flags().IntP("concurrency", "C", 0, "Concurrent workers per run")
	cmd.Flags().Bool("stop-on-error", false, "Abort at the first failed iteration")
	cmd.Flags().String("url", "", "Target base URL")
	cmd.Flags().StringP("query", "q", "", "Search query")
	cmd.Flags().Bool("insecure", false, "Skip TLS certificate verification")
	cmd.Flags().Bool("local", false, "Benchmark against an in-process fixture server")
	cmd.Flags().StringP("output", "o", "", "Write a Markdown report to this path (- for stdout)")

	return cmd
}

func runBenchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := initLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, _ := cmd.Flags().GetBool("local")
	if local {
		srv, err := fixture.NewServer(cfg.Server, cfg.Fixture, log)
		if err != nil {
			return err
		}
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop(context.Background()) }()
		cfg.Target.BaseURL = srv.BaseURL()
	}

	return runBench(ctx, cmd.OutOrStdout(), cfg, log)
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.BenchConfig) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("strategy") {
		if cfg.Bench.Strategies, err = flags.GetStringSlice("strategy"); err != nil {
			return err
		}
	}
	if flags.Changed("job") {
		ids, err := flags.GetStringSlice("job")
		if err != nil {
			return err
		}
		if cfg.Bench.Jobs, err = bench.SelectJobs(cfg.Bench.Jobs, ids); err != nil {
			return err
		}
	}
	if flags.Changed("iterations") {
		if cfg.Bench.Iterations, err = flags.GetInt("iterations"); err != nil {
			return err
		}
	}
	if flags.Changed("warmup") {
		if cfg.Bench.Warmup, err = flags.GetInt("warmup"); err != nil {
			return err
		}
	}
	if flags.Changed("duration") {
		if cfg.Bench.Duration, err = flags.GetDuration("duration"); err != nil {
			return err
		}
		// A duration given alone replaces any iteration cap.
		if !flags.Changed("iterations") {
			cfg.Bench.Iterations = 0
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Bench.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("stop-on-error") {
		if cfg.Bench.StopOnError, err = flags.GetBool("stop-on-error"); err != nil {
			return err
		}
	}
	if flags.Changed("url") {
		if cfg.Target.BaseURL, err = flags.GetString("url"); err != nil {
			return err
		}
	}
	if flags.Changed("query") {
		if cfg.Target.Query, err = flags.GetString("query"); err != nil {
			return err
		}
	}
	if insecure, _ := flags.GetBool("insecure"); insecure {
		if cfg.HTTP.TLS == nil {
			cfg.HTTP.TLS = &security.TLSConfig{}
		}
		cfg.HTTP.TLS.Verification = security.VerificationBypass
	}
	if flags.Changed("output") {
		if cfg.Report, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	return nil
}

// runBench wires telemetry, the owned client, the pool and the runner, then
// measures every selected strategy under every configured job.
func runBench(ctx context.Context, out io.Writer, cfg *config.BenchConfig, log *logger.Logger) (err error) {
	tel, err := observability.Init(ctx, &cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := tel.Shutdown(shutdownCtx); serr != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", serr))
		}
	}()

	metrics, err := observability.NewMetrics(tel.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return err
	}

	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(context.Background()) }()

	pool := httpclient.NewPool(cfg.HTTP)
	defer func() { _ = pool.Close(context.Background()) }()

	strategies, err := strategy.Select(strategy.All(pool, cfg.PoolName), cfg.Bench.Strategies)
	if err != nil {
		return err
	}

	target := cfg.Target.URL()
	runner, err := bench.NewRunner(client, target, cfg.Bench,
		bench.WithLogger(log),
		bench.WithMetrics(metrics),
		bench.WithTracer(tel.TracerProvider.Tracer(instrumentationName)),
	)
	if err != nil {
		return err
	}

	log.Info("benchmark starting", logger.Fields(
		logger.FieldURL, target,
		logger.FieldClient, client.Name(),
		"pool", cfg.PoolName,
		"jobs", len(cfg.Bench.Jobs),
		"strategies", len(strategies),
	))

	ctx, span := observability.StartSpan(ctx, observability.SpanSession)
	summaries, runErr := runner.RunAll(ctx, cfg.Bench.Jobs, strategies)
	observability.EndSpan(span, runErr, bench.ErrorType(runErr))
	for _, s := range summaries {
		fmt.Fprintln(out, s.String())
	}

	if cfg.Report != "" && len(summaries) > 0 {
		rep := &report.Report{Target: target, Generated: time.Now(), Summaries: summaries}
		if err := writeReport(cfg.Report, out, rep); err != nil {
			return err
		}
		log.Info("report written", logger.Fields("path", cfg.Report))
	}
	if hint := failureHint(runErr); hint != "" {
		log.Warn(hint, logger.Fields(logger.FieldURL, target))
	}
	return runErr
}

// failureHint suggests what to check for the kind of failure that aborted a
// run. It returns "" when err is nil or carries no recognizable cause.
func failureHint(err error) string {
	switch {
	case err == nil:
		return ""
	case httpclient.IsNotFound(err):
		return "target answered 404; check --url and the search path"
	case httpclient.IsServerError(err):
		return "target answered with a server error; it may be overloaded or failing"
	case httpclient.IsTimeout(err):
		return "request timed out; raise http.timeout or lower --concurrency"
	case httpclient.IsConnection(err):
		return "could not reach target; check --url or use --local"
	case search.IsDecodeError(err):
		return "target response is not a search result document"
	default:
		return ""
	}
}

// writeReport writes rep to path, or to stdout when path is "-".
func writeReport(path string, stdout io.Writer, rep *report.Report) error {
	if path == "-" {
		return rep.WriteMarkdown(stdout)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := rep.WriteMarkdown(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
