// Package observability wires OpenTelemetry metrics and traces for benchmark
// runs. Export goes over OTLP/HTTP; with no endpoint configured providers are
// still installed so instruments work, but nothing leaves the process.
//
//	tel, err := observability.Init(ctx, &cfg)
//	defer tel.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("benchhttp"))
//	metrics.RecordRequest(ctx, "Server", "stream-direct", elapsed, "")
package observability
