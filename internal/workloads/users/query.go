package users

import (
	"context"

	"dbstress/internal/database"
)

// User is one stored record.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SelectAll returns every stored user ordered by id. Single-threaded: the
// worker count applies only to insertion.
func SelectAll(ctx context.Context, drv database.Driver) ([]User, error) {
	rows, err := drv.Query(ctx, selectStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of stored users.
func Count(ctx context.Context, drv database.Driver) (int64, error) {
	rows, err := drv.Query(ctx, countStmt)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

// DeleteAll removes every stored user and reports how many rows went away.
func DeleteAll(ctx context.Context, drv database.Driver) (int64, error) {
	return drv.Exec(ctx, deleteStmt)
}
