package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latency histograms record microseconds between 1µs and 60s at three
// significant figures.
const (
	latencyFloorMicros   = 1
	latencyCeilingMicros = 60_000_000
	latencySigFigs       = 3
)

func newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(latencyFloorMicros, latencyCeilingMicros, latencySigFigs)
}

// Outcome is the final accounting of one worker. Immutable once the worker
// emits it; consumed exactly once by Aggregate.
type Outcome struct {
	// Worker is the index the outcome belongs to, the stable aggregation key.
	Worker int

	// Succeeded counts inserts the engine accepted.
	Succeeded int64

	// Failed counts records abandoned after exhausting contention retries.
	Failed int64

	// Fatal is the non-contention error that terminated the worker early,
	// if any.
	Fatal error

	// Latencies holds the microsecond latency of every successful insert.
	Latencies *hdrhistogram.Histogram
}

// WorkerError is a fatal error surfaced in the summary, tagged with the
// worker it terminated.
type WorkerError struct {
	Worker int    `json:"worker"`
	Err    string `json:"error"`
}

// Summary is the order-independent aggregation of all worker outcomes for
// one run. It is the sole artifact handed to the reporting layer.
type Summary struct {
	RunID          string        `json:"run_id"`
	Workers        int           `json:"workers"`
	TotalSucceeded int64         `json:"total_succeeded"`
	TotalFailed    int64         `json:"total_failed"`
	Elapsed        time.Duration `json:"elapsed"`
	Throughput     float64       `json:"throughput"`
	MeanLatency    time.Duration `json:"mean_latency"`
	P95Latency     time.Duration `json:"p95_latency"`
	P99Latency     time.Duration `json:"p99_latency"`
	FatalErrors    []WorkerError `json:"fatal_errors,omitempty"`
}

// Fatal reports whether any worker terminated on a fatal error.
func (s *Summary) Fatal() bool {
	return len(s.FatalErrors) > 0
}

// Aggregate folds worker outcomes into a run summary. outcomes must be
// ordered by worker index — never by completion time — so the summary is
// reproducible across runs regardless of scheduling. Pure: no side effects
// beyond the returned value.
func Aggregate(outcomes []Outcome, elapsed time.Duration) *Summary {
	s := &Summary{
		Workers: len(outcomes),
		Elapsed: elapsed,
	}

	merged := newLatencyHistogram()
	for _, out := range outcomes {
		s.TotalSucceeded += out.Succeeded
		s.TotalFailed += out.Failed
		if out.Fatal != nil {
			s.FatalErrors = append(s.FatalErrors, WorkerError{Worker: out.Worker, Err: out.Fatal.Error()})
		}
		if out.Latencies != nil {
			merged.Merge(out.Latencies)
		}
	}

	if elapsed > 0 {
		s.Throughput = float64(s.TotalSucceeded) / elapsed.Seconds()
	}
	if merged.TotalCount() > 0 {
		s.MeanLatency = time.Duration(merged.Mean()) * time.Microsecond
		s.P95Latency = time.Duration(merged.ValueAtQuantile(95)) * time.Microsecond
		s.P99Latency = time.Duration(merged.ValueAtQuantile(99)) * time.Microsecond
	}
	return s
}
