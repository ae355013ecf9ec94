// Package report renders run summaries for human and machine consumption.
// It consumes the completed Summary value and nothing else.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"dbstress/internal/runner"
	"dbstress/internal/workloads/users"
)

// Render writes a human-readable summary. Succeeded inserts, retried-but-
// abandoned inserts, and fatal terminations are reported separately so
// contention-driven loss can be told apart from genuine bugs.
func Render(w io.Writer, s *runner.Summary) {
	fmt.Fprintf(w, "run %s\n", s.RunID)
	fmt.Fprintf(w, "  workers:    %d\n", s.Workers)
	fmt.Fprintf(w, "  succeeded:  %d\n", s.TotalSucceeded)
	fmt.Fprintf(w, "  abandoned:  %d (contention retries exhausted)\n", s.TotalFailed)
	fmt.Fprintf(w, "  elapsed:    %v\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  throughput: %.1f inserts/s\n", s.Throughput)
	if s.TotalSucceeded > 0 {
		fmt.Fprintf(w, "  latency:    mean %v, p95 %v, p99 %v\n",
			s.MeanLatency.Round(time.Microsecond),
			s.P95Latency.Round(time.Microsecond),
			s.P99Latency.Round(time.Microsecond))
	}
	for _, fe := range s.FatalErrors {
		fmt.Fprintf(w, "  fatal:      worker %d: %s\n", fe.Worker, fe.Err)
	}
}

// RenderJSON writes the summary as indented JSON.
func RenderJSON(w io.Writer, s *runner.Summary) error {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// RenderUsers writes the stored records, one per line.
func RenderUsers(w io.Writer, list []users.User) {
	for _, u := range list {
		fmt.Fprintf(w, "id: %d name: %s\n", u.ID, u.Name)
	}
	fmt.Fprintf(w, "%d users\n", len(list))
}
