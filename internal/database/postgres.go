package database

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDriver drives a PostgreSQL server through pgx. Included so the
// same insertion workload can be pointed at a client/server engine for
// comparison against the embedded default.
type PostgresDriver struct {
	pool *pgxpool.Pool
}

func (pd *PostgresDriver) Open(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}
	pd.pool = pool
	return nil
}

func (pd *PostgresDriver) Close() error {
	pd.pool.Close()
	return nil
}

func (pd *PostgresDriver) Dialect() Dialect {
	return DialectPostgres
}

// Acquire checks a connection out of the pool for the lifetime of one worker.
func (pd *PostgresDriver) Acquire(ctx context.Context) (Conn, error) {
	conn, err := pd.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxConn{conn: conn}, nil
}

func (pd *PostgresDriver) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := pd.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (pd *PostgresDriver) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := pd.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

// Classify maps PostgreSQL lock and serialization failures to contention.
func (pd *PostgresDriver) Classify(err error) ErrorKind {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case pgerrcode.LockNotAvailable, pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure:
			return KindContention
		}
	}
	return KindFatal
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c *pgxConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := c.conn.Exec(ctx, query, args...)
	return err
}

func (c *pgxConn) Close() error {
	c.conn.Release()
	return nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool {
	return r.rows.Next()
}

func (r *pgxRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *pgxRows) Err() error {
	return r.rows.Err()
}

func (r *pgxRows) Close() error {
	r.rows.Close()
	return nil
}
