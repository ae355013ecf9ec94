// Package users defines the insertion workload's target table and the
// statements executed against it.
package users

import (
	"context"
	"fmt"
	"log"

	"dbstress/internal/database"
	"dbstress/internal/runner"
)

// Schema returns the users table definition for a dialect. The UNIQUE name
// constraint is deliberate: a duplicate insert is a constraint violation and
// must surface as a fatal error, not be absorbed.
func Schema(d database.Dialect) string {
	switch d {
	case database.DialectPostgres:
		return `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`
	case database.DialectMySQL:
		return `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE
		);`
	default:
		return `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`
	}
}

// InsertStmt returns the single-record insert for a dialect.
func InsertStmt(d database.Dialect) string {
	if d == database.DialectPostgres {
		return "INSERT INTO users (id, name) VALUES ($1, $2)"
	}
	return "INSERT INTO users (id, name) VALUES (?, ?)"
}

const (
	selectStmt = "SELECT id, name FROM users ORDER BY id"
	countStmt  = "SELECT COUNT(*) FROM users"
	deleteStmt = "DELETE FROM users"
)

// NameFor derives the record payload for an identifier. Deterministic, so a
// rerun against a freshly bootstrapped file produces an identical table.
func NameFor(id int64) string {
	return fmt.Sprintf("user-%010d", id)
}

// Spec returns the insertion spec the runner executes once per identifier.
func Spec(d database.Dialect) runner.InsertSpec {
	return runner.InsertSpec{
		Statement: InsertStmt(d),
		Args: func(id int64) []interface{} {
			return []interface{}{id, NameFor(id)}
		},
	}
}

// Bootstrap creates the users table if absent. It runs single-threaded
// before any worker starts; its nil error is the ready signal.
func Bootstrap(ctx context.Context, drv database.Driver, logger *log.Logger) error {
	if _, err := drv.Exec(ctx, Schema(drv.Dialect())); err != nil {
		return fmt.Errorf("bootstrap users table: %w", err)
	}
	logger.Printf("users table ready")
	return nil
}
