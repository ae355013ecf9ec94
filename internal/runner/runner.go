// Package runner coordinates the concurrent insertion workload: it
// partitions the record range across workers, provisions one connection per
// worker, runs the workers to completion, and aggregates their outcomes into
// a reproducible summary.
package runner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"dbstress/internal/database"
)

// InsertSpec is the statement a workload wants executed once per record
// identifier. Args materializes the bind arguments for one identifier.
type InsertSpec struct {
	Statement string
	Args      func(id int64) []interface{}
}

// Config sizes one run. Immutable after construction.
type Config struct {
	Workers int
	Inserts int64
	Policy  Policy
}

// Run executes the insertion workload and returns its summary.
//
// Every worker connection is provisioned before the first worker goroutine
// starts, so a ProvisionError aborts the run with zero workers spawned. The
// coordinator holds no locks: workers write into their own outcome slot and
// the only synchronization is the WaitGroup join barrier. A worker's fatal
// error does not cancel its siblings — interrupting an in-flight write could
// corrupt the shared file — so the coordinator waits for every worker to
// finish naturally and surfaces fatal errors in the summary.
func Run(ctx context.Context, drv database.Driver, spec InsertSpec, cfg Config, logger *log.Logger) (*Summary, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.Workers)
	}
	ranges := Partition(cfg.Inserts, cfg.Workers)

	conns := make([]database.Conn, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		conn, err := drv.Acquire(ctx)
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return nil, &database.ProvisionError{Driver: drv.Dialect(), Err: err}
		}
		conns = append(conns, conn)
	}

	logger.Printf("starting insertion: %d records across %d workers", cfg.Inserts, cfg.Workers)

	outcomes := make([]Outcome, cfg.Workers)
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < cfg.Workers; i++ {
		w := &insertWorker{
			index:    i,
			rng:      ranges[i],
			conn:     conns[i],
			spec:     spec,
			policy:   cfg.Policy,
			classify: drv.Classify,
			logger:   logger,
		}
		wg.Add(1)
		go func(slot int, w *insertWorker) {
			defer wg.Done()
			// One slot per worker keeps aggregation ordered by worker
			// index, independent of completion order.
			outcomes[slot] = w.run(ctx)
		}(i, w)
	}

	wg.Wait()
	elapsed := time.Since(start)

	summary := Aggregate(outcomes, elapsed)
	summary.RunID = uuid.NewString()

	logger.Printf("run %s finished: %d succeeded, %d failed, %d fatal, %v elapsed",
		summary.RunID, summary.TotalSucceeded, summary.TotalFailed, len(summary.FatalErrors), elapsed.Round(time.Millisecond))
	return summary, nil
}
