package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDriver drives an embedded SQLite database file. This is the default
// engine and the one whose file-level write lock the harness exists to
// exercise: every worker connection contends for the same exclusive lock,
// and the engine reports SQLITE_BUSY or SQLITE_LOCKED when it is held.
type SQLiteDriver struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// NewSQLiteDriver returns a SQLite driver whose connections apply the given
// busy timeout before surfacing contention to the caller.
func NewSQLiteDriver(busyTimeout time.Duration) *SQLiteDriver {
	return &SQLiteDriver{busyTimeout: busyTimeout}
}

func (sd *SQLiteDriver) Open(ctx context.Context, dsn string) error {
	db, err := sql.Open("sqlite3", sd.connString(dsn))
	if err != nil {
		return err
	}
	// sql.Open is lazy; ping so an unwritable path fails here, not in a worker.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("open sqlite database %s: %w", dsn, err)
	}
	sd.db = db
	return nil
}

// connString builds a file: DSN so the busy timeout applies to every
// connection the pool hands out.
func (sd *SQLiteDriver) connString(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d", path, sd.busyTimeout.Milliseconds())
}

func (sd *SQLiteDriver) Close() error {
	return sd.db.Close()
}

func (sd *SQLiteDriver) Dialect() Dialect {
	return DialectSQLite
}

// Acquire pins a dedicated session out of the pool. SQLite's locking is
// file-level, not handle-level, so each worker gets its own session and the
// engine serializes their writes.
func (sd *SQLiteDriver) Acquire(ctx context.Context) (Conn, error) {
	conn, err := sd.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlConn{conn: conn}, nil
}

func (sd *SQLiteDriver) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := sd.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (sd *SQLiteDriver) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := sd.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

// Classify treats SQLITE_BUSY and SQLITE_LOCKED as contention; everything
// else (constraint violations, I/O errors) is fatal to the owning worker.
func (sd *SQLiteDriver) Classify(err error) ErrorKind {
	var se sqlite3.Error
	if errors.As(err, &se) {
		if se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked {
			return KindContention
		}
	}
	return KindFatal
}
