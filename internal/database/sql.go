package database

import (
	"context"
	"database/sql"
)

// sqlConn adapts a dedicated database/sql session to the Conn interface.
// Used by the SQLite and MySQL drivers.
type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := c.conn.ExecContext(ctx, query, args...)
	return err
}

func (c *sqlConn) Close() error {
	return c.conn.Close()
}

// sqlRows adapts *sql.Rows to the Rows interface.
type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}
