package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/benchhttp/logger"
)

// Outcome attribute values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// InitMeter initializes the global meter provider. With no endpoint the
// provider has no reader and records nothing.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config *Config) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(config)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	providerOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if config.Enabled() {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(config.Endpoint),
		}
		if config.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}

		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating metric exporter: %w", err)
		}

		readerOpts := []sdkmetric.PeriodicReaderOption{}
		if config.Interval > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)))
	}

	mp := sdkmetric.NewMeterProvider(providerOpts...)
	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by benchmark runs.
type Metrics struct {
	requests   metric.Int64Counter
	errors     metric.Int64Counter
	latency    metric.Float64Histogram
	allocBytes metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("bench.requests",
		metric.WithDescription("Requests issued by benchmark iterations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bench.requests counter: %w", err)
	}

	errs, err := meter.Int64Counter("bench.errors",
		metric.WithDescription("Failed benchmark iterations by error type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bench.errors counter: %w", err)
	}

	latency, err := meter.Float64Histogram("bench.latency",
		metric.WithDescription("Duration of one GET plus decode"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bench.latency histogram: %w", err)
	}

	allocBytes, err := meter.Int64Counter("bench.alloc_bytes",
		metric.WithDescription("Heap bytes allocated during measured iterations"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bench.alloc_bytes counter: %w", err)
	}

	return &Metrics{
		requests:   requests,
		errors:     errs,
		latency:    latency,
		allocBytes: allocBytes,
	}, nil
}

// RecordRequest records one iteration. An empty errType marks success.
func (m *Metrics) RecordRequest(ctx context.Context, job, strategy string, duration time.Duration, errType string) {
	outcome := OutcomeOK
	if errType != "" {
		outcome = OutcomeError
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrJob, job),
		attribute.String(AttrStrategy, strategy),
		attribute.String(AttrOutcome, outcome),
	))
	m.latency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrJob, job),
		attribute.String(AttrStrategy, strategy),
	))
	if errType != "" {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrJob, job),
			attribute.String(AttrStrategy, strategy),
			attribute.String(AttrErrorType, errType),
		))
	}
}

// RecordAllocations records heap bytes allocated by a run.
func (m *Metrics) RecordAllocations(ctx context.Context, job, strategy string, bytes uint64) {
	m.allocBytes.Add(ctx, int64(bytes), metric.WithAttributes(
		attribute.String(AttrJob, job),
		attribute.String(AttrStrategy, strategy),
	))
}
