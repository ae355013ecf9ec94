package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers for lock conflicts.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrLockDeadlock    = 1213
)

// MySQLDriver drives a MySQL server, the second client/server comparison
// backend.
type MySQLDriver struct {
	db *sql.DB
}

func (md *MySQLDriver) Open(ctx context.Context, dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	md.db = db
	return nil
}

func (md *MySQLDriver) Close() error {
	return md.db.Close()
}

func (md *MySQLDriver) Dialect() Dialect {
	return DialectMySQL
}

func (md *MySQLDriver) Acquire(ctx context.Context) (Conn, error) {
	conn, err := md.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlConn{conn: conn}, nil
}

func (md *MySQLDriver) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := md.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (md *MySQLDriver) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := md.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

// Classify maps lock wait timeouts and deadlocks to contention.
func (md *MySQLDriver) Classify(err error) ErrorKind {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrLockWaitTimeout, mysqlErrLockDeadlock:
			return KindContention
		}
	}
	return KindFatal
}
