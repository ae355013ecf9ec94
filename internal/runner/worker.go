package runner

import (
	"context"
	"log"
	"time"

	"dbstress/internal/database"
)

// insertWorker executes one work range on its own connection. Workers never
// communicate with each other; the only coupling is the engine's write lock,
// absorbed by the retry policy.
type insertWorker struct {
	index    int
	rng      Range
	conn     database.Conn
	spec     InsertSpec
	policy   Policy
	classify func(error) database.ErrorKind
	logger   *log.Logger

	outcome Outcome
}

// run drives the worker's range to completion and emits its outcome. The
// connection is released unconditionally, whether the range completed,
// retries exhausted, or a fatal error terminated the worker.
func (w *insertWorker) run(ctx context.Context) Outcome {
	w.outcome = Outcome{Worker: w.index, Latencies: newLatencyHistogram()}
	defer w.conn.Close()

	for id := w.rng.Start; id < w.rng.End; id++ {
		if err := w.insert(ctx, id); err != nil {
			// Fatal errors are not masked by continuing: remaining
			// identifiers in the range are never attempted.
			w.outcome.Fatal = err
			w.logger.Printf("worker %d: fatal error at id %d: %v", w.index, id, err)
			break
		}
	}
	return w.outcome
}

// insert drives a single record to success or abandonment. A record
// abandoned after exhausting contention retries counts as failed and returns
// nil; only non-contention errors propagate, and they terminate the worker.
func (w *insertWorker) insert(ctx context.Context, id int64) error {
	args := w.spec.Args(id)

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := w.conn.Exec(ctx, w.spec.Statement, args...)
		if err == nil {
			w.outcome.Succeeded++
			w.outcome.Latencies.RecordValue(time.Since(start).Microseconds())
			return nil
		}

		kind := w.classify(err)
		d := w.policy.Decide(attempt, kind)
		if !d.Retry {
			if kind == database.KindContention {
				// A single busy record does not abort the worker.
				w.outcome.Failed++
				w.logger.Printf("worker %d: abandoned id %d after %d attempts: %v", w.index, id, attempt, err)
				return nil
			}
			return err
		}

		if err := sleep(ctx, d.After); err != nil {
			return err
		}
	}
}

// sleep waits out a backoff delay, honoring cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
