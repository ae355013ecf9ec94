// Package database abstracts the storage engines the stress harness can
// drive. Engines are exposed through a deliberately narrow surface:
// connection acquisition, statement execution, and error classification.
// The harness never looks inside an engine beyond that.
package database

import (
	"context"
	"fmt"
	"time"
)

// Dialect identifies a supported storage engine.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ErrorKind classifies a failed statement execution.
type ErrorKind int

const (
	// KindContention marks a transient lock conflict caused by another
	// concurrent writer. Recoverable by retrying after backoff.
	KindContention ErrorKind = iota

	// KindFatal marks every other failure: constraint violations, I/O
	// errors, corrupted statements. Not recoverable by retrying.
	KindFatal
)

func (k ErrorKind) String() string {
	if k == KindContention {
		return "contention"
	}
	return "fatal"
}

// Driver is one open storage engine. A Driver is opened once per run and
// hands out per-worker connections via Acquire.
type Driver interface {
	// Open establishes the engine handle. The DSN format is engine-specific:
	// a file path for SQLite, a connection URL for PostgreSQL and MySQL.
	Open(ctx context.Context, dsn string) error
	Close() error

	Dialect() Dialect

	// Acquire provisions a connection for exclusive use by a single worker.
	// Callers must Close the connection when the worker exits.
	Acquire(ctx context.Context) (Conn, error)

	// Exec runs a statement on the shared handle and reports rows affected.
	// Used for single-threaded operations (schema bootstrap, delete).
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)

	// Query runs a row-returning statement on the shared handle.
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)

	// Classify maps an execution error to the retry taxonomy.
	Classify(err error) ErrorKind
}

// Conn is a connection owned by exactly one worker for the worker's
// lifetime. It is never shared; the engine's own locking is the only
// coordination between connections.
type Conn interface {
	Exec(ctx context.Context, query string, args ...interface{}) error
	Close() error
}

// Rows iterates a query result set.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// Options carries per-connection engine configuration.
type Options struct {
	// BusyTimeout is how long a SQLite connection lets the engine block on a
	// held write lock before surfacing SQLITE_BUSY. Zero surfaces contention
	// immediately, leaving all waiting to the retry policy.
	BusyTimeout time.Duration
}

// ProvisionError reports a failure to open the engine or acquire a worker
// connection. It is fatal to the whole run and is raised before any worker
// starts.
type ProvisionError struct {
	Driver Dialect
	Err    error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s connection: %v", e.Driver, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// New returns the driver for the named dialect.
func New(name string, opts Options) (Driver, error) {
	switch Dialect(name) {
	case DialectSQLite:
		return NewSQLiteDriver(opts.BusyTimeout), nil
	case DialectPostgres:
		return &PostgresDriver{}, nil
	case DialectMySQL:
		return &MySQLDriver{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", name)
	}
}
