package bench

import (
	"fmt"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/kbukum/benchhttp/logger"
)

// Summary contains the results of one job/strategy run.
type Summary struct {
	RunID    string
	Job      Job
	Strategy string
	// Iterations counts measured iterations, failed ones included.
	Iterations int64
	Errors     int64
	// ErrorsByType counts failures per ErrorType.
	ErrorsByType map[string]int64
	// Docs is the document count of the first successful result.
	Docs int

	Elapsed     time.Duration
	Throughput  float64 // iterations per second
	AllocsPerOp uint64
	BytesPerOp  uint64
	GCCycles    uint32

	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	P99  time.Duration
	Max  time.Duration
}

// String returns a stringified version of the Summary.
func (s *Summary) String() string {
	return fmt.Sprintf(
		"{Job: %s, Strategy: %s, Iterations: %d, Errors: %d, Elapsed: %s, Throughput: %.2f/s, Allocs/op: %d, B/op: %d, P50: %s, P99: %s}",
		s.Job.ID, s.Strategy, s.Iterations, s.Errors, s.Elapsed, s.Throughput,
		s.AllocsPerOp, s.BytesPerOp, s.P50, s.P99)
}

// LogFields returns the summary as structured log fields.
func (s *Summary) LogFields() map[string]interface{} {
	return logger.Fields(
		logger.FieldRunID, s.RunID,
		logger.FieldJob, s.Job.ID,
		logger.FieldStrategy, s.Strategy,
		logger.FieldIterations, s.Iterations,
		"errors", s.Errors,
		"throughput", s.Throughput,
		"allocs_per_op", s.AllocsPerOp,
		"bytes_per_op", s.BytesPerOp,
		"p50", s.P50.String(),
		"p99", s.P99.String(),
	)
}

// applyLatency fills the latency fields from a nanosecond histogram.
func (s *Summary) applyLatency(h *hdrhistogram.Histogram) {
	if h.TotalCount() == 0 {
		return
	}
	s.Mean = time.Duration(h.Mean())
	s.P50 = time.Duration(h.ValueAtQuantile(50))
	s.P90 = time.Duration(h.ValueAtQuantile(90))
	s.P99 = time.Duration(h.ValueAtQuantile(99))
	s.Max = time.Duration(h.Max())
}
