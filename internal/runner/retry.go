package runner

import (
	"time"

	"dbstress/internal/database"
)

// Policy decides whether a worker retries a failed insert. Contention is
// retried up to MaxAttempts total attempts with exponential backoff; every
// other error is abandoned immediately. An unbounded retry loop is
// disallowed: the engine's write lock is exclusive and process-wide, so
// unbounded contention between workers could starve the run indefinitely.
type Policy struct {
	// MaxAttempts is the total attempt budget per record, including the
	// first. A record is never executed more than MaxAttempts times.
	MaxAttempts int

	// BaseDelay is the backoff after the first failed attempt. It doubles
	// on every subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// Decision is the policy's verdict for one failed attempt.
type Decision struct {
	Retry bool
	After time.Duration
}

// Abandon tells the worker to stop retrying the current record.
var Abandon = Decision{}

// Decide returns the verdict after a failed attempt. attempt is the number
// of attempts already made for the record, starting at 1.
func (p Policy) Decide(attempt int, kind database.ErrorKind) Decision {
	if kind != database.KindContention {
		return Abandon
	}
	if attempt >= p.MaxAttempts {
		return Abandon
	}
	return Decision{Retry: true, After: p.backoff(attempt)}
}

// backoff doubles the base delay per attempt, capped at MaxDelay.
func (p Policy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << uint(attempt-1)
	// d <= 0 catches shift overflow for large attempt counts.
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
