package bench

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/benchhttp/errors"
	"github.com/kbukum/benchhttp/httpclient"
	"github.com/kbukum/benchhttp/logger"
	"github.com/kbukum/benchhttp/observability"
	"github.com/kbukum/benchhttp/search"
	"github.com/kbukum/benchhttp/strategy"
)

const (
	maxRecordableLatencyNS = int64(5 * time.Minute)
	sigFigs                = 3
)

// Runner measures strategies against one URL with one client handle.
type Runner struct {
	client  *httpclient.Client
	url     string
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l.WithComponent("bench") }
}

// WithMetrics records every iteration on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer sets the tracer used for run and iteration spans.
// Defaults to the global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// NewRunner creates a Runner issuing requests for url with client.
func NewRunner(client *httpclient.Client, url string, cfg Config, opts ...Option) (*Runner, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		client: client,
		url:    url,
		cfg:    cfg,
		log:    logger.WithComponent("bench"),
		tracer: observability.Tracer("github.com/kbukum/benchhttp/bench"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// RunAll runs every strategy under every job, job-major. It stops at the
// first aborted run and returns the summaries collected so far.
func (r *Runner) RunAll(ctx context.Context, jobs []Job, strategies []strategy.Strategy) ([]*Summary, error) {
	summaries := make([]*Summary, 0, len(jobs)*len(strategies))
	for _, job := range jobs {
		for _, s := range strategies {
			summary, err := r.Run(ctx, job, s)
			if summary != nil {
				summaries = append(summaries, summary)
			}
			if err != nil {
				return summaries, err
			}
		}
	}
	return summaries, nil
}

// Run measures strategy s under job. The returned summary is non-nil
// whenever the measured phase started, even if the run was aborted.
func (r *Runner) Run(ctx context.Context, job Job, s strategy.Strategy) (*Summary, error) {
	restore := job.apply()
	defer restore()

	runID := uuid.New().String()
	log := r.log.WithFields(logger.Fields(
		logger.FieldRunID, runID,
		logger.FieldJob, job.ID,
		logger.FieldStrategy, s.Name,
	))

	ctx, span := r.tracer.Start(ctx, observability.SpanRun, trace.WithAttributes(
		attribute.String(observability.AttrRunID, runID),
		attribute.String(observability.AttrJob, job.ID),
		attribute.String(observability.AttrStrategy, s.Name),
		attribute.String(observability.AttrURL, r.url),
	))

	log.Debug("warm-up started", logger.Fields("warmup", r.cfg.Warmup))
	if err := r.warmup(ctx, s); err != nil {
		observability.EndSpan(span, err, ErrorType(err))
		log.WithError(err).Warn("warm-up aborted")
		return nil, err
	}

	summary, err := r.measure(ctx, runID, job, s)
	observability.EndSpan(span, err, ErrorType(err))

	if r.metrics != nil {
		r.metrics.RecordAllocations(ctx, job.ID, s.Name, summary.BytesPerOp*uint64(summary.Iterations))
	}
	if err != nil {
		log.WithError(err).Warn("run aborted", summary.LogFields())
		return summary, err
	}
	log.Info("run finished", summary.LogFields())
	return summary, nil
}

func (r *Runner) warmup(ctx context.Context, s strategy.Strategy) error {
	for i := 0; i < r.cfg.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Aborted("context done during warm-up", err)
		}
		if _, err := s.Run(ctx, r.client, r.url); err != nil && r.cfg.StopOnError {
			return errors.Aborted("warm-up iteration failed", err)
		}
	}
	return nil
}

// worker holds the per-goroutine measurement state merged after the run.
type worker struct {
	histogram *hdrhistogram.Histogram
	byType    map[string]int64
	count     int64
	failed    int64
}

func (r *Runner) measure(ctx context.Context, runID string, job Job, s strategy.Strategy) (*Summary, error) {
	var (
		next     atomic.Int64
		docs     atomic.Int64
		docsOnce sync.Once
		deadline time.Time
		workers  = make([]*worker, r.cfg.Concurrency)
	)
	if r.cfg.Duration > 0 {
		deadline = time.Now().Add(r.cfg.Duration)
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		wk := &worker{
			histogram: hdrhistogram.New(1, maxRecordableLatencyNS, sigFigs),
			byType:    make(map[string]int64),
		}
		workers[w] = wk

		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					if ctx.Err() != nil {
						return errors.Aborted("context done", ctx.Err())
					}
					// Another worker aborted.
					return nil
				}
				if !deadline.IsZero() && !time.Now().Before(deadline) {
					return nil
				}
				i := next.Add(1)
				if r.cfg.Iterations > 0 && i > int64(r.cfg.Iterations) {
					return nil
				}
				if job.ForceGC {
					runtime.GC()
				}

				result, latency, err := r.iteration(gctx, runID, job, s, i)
				wk.count++
				_ = wk.histogram.RecordValue(clampLatency(latency))

				errType := ErrorType(err)
				if r.metrics != nil {
					r.metrics.RecordRequest(gctx, job.ID, s.Name, latency, errType)
				}
				if err != nil {
					wk.failed++
					wk.byType[errType]++
					if r.cfg.StopOnError {
						return errors.Aborted("iteration failed", err)
					}
					continue
				}
				docsOnce.Do(func() { docs.Store(int64(len(result.Docs))) })
			}
		})
	}
	runErr := g.Wait()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	histogram := hdrhistogram.New(1, maxRecordableLatencyNS, sigFigs)
	summary := &Summary{
		RunID:        runID,
		Job:          job,
		Strategy:     s.Name,
		ErrorsByType: make(map[string]int64),
		Elapsed:      elapsed,
		GCCycles:     after.NumGC - before.NumGC,
		Docs:         int(docs.Load()),
	}
	for _, wk := range workers {
		histogram.Merge(wk.histogram)
		summary.Iterations += wk.count
		summary.Errors += wk.failed
		for k, v := range wk.byType {
			summary.ErrorsByType[k] += v
		}
	}
	summary.applyLatency(histogram)
	if summary.Iterations > 0 {
		n := uint64(summary.Iterations)
		summary.AllocsPerOp = (after.Mallocs - before.Mallocs) / n
		summary.BytesPerOp = (after.TotalAlloc - before.TotalAlloc) / n
	}
	if elapsed > 0 {
		summary.Throughput = float64(summary.Iterations) / elapsed.Seconds()
	}
	return summary, runErr
}

// iteration runs one traced request and returns its latency.
func (r *Runner) iteration(ctx context.Context, runID string, job Job, s strategy.Strategy, i int64) (*search.Result, time.Duration, error) {
	ctx, span := r.tracer.Start(ctx, observability.SpanIteration, trace.WithAttributes(
		attribute.String(observability.AttrRunID, runID),
		attribute.String(observability.AttrJob, job.ID),
		attribute.String(observability.AttrStrategy, s.Name),
		attribute.Int64(observability.AttrIteration, i),
	))

	before := time.Now()
	result, err := s.Run(ctx, r.client, r.url)
	latency := time.Since(before)

	observability.EndSpan(span, err, ErrorType(err))
	return result, latency, err
}

func clampLatency(d time.Duration) int64 {
	ns := d.Nanoseconds()
	switch {
	case ns < 1:
		return 1
	case ns > maxRecordableLatencyNS:
		return maxRecordableLatencyNS
	default:
		return ns
	}
}
