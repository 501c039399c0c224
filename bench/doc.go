// Package bench measures request strategies under garbage-collector
// configurations. A Runner drives one strategy for a warm-up phase and then
// a measured phase of fixed iterations or fixed duration, recording latency
// in an HDR histogram and heap allocations from runtime.MemStats.
//
// Individual failures are counted, never retried. With StopOnError the first
// failure aborts the run.
package bench
