package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteConnString(t *testing.T) {
	drv := NewSQLiteDriver(5 * time.Second)
	assert.Equal(t, "file:stress.db?_busy_timeout=5000", drv.connString("stress.db"))

	drv = NewSQLiteDriver(0)
	assert.Equal(t, "file:stress.db?_busy_timeout=0", drv.connString("stress.db"))
}

func TestSQLiteOpenInvalidPath(t *testing.T) {
	drv := NewSQLiteDriver(0)
	// The parent directory does not exist; the engine cannot create the file.
	path := filepath.Join(t.TempDir(), "no-such-dir", "stress.db")

	err := drv.Open(context.Background(), path)
	require.Error(t, err)
}

func TestSQLiteAcquireAndExec(t *testing.T) {
	ctx := context.Background()
	drv := NewSQLiteDriver(0)
	require.NoError(t, drv.Open(ctx, filepath.Join(t.TempDir(), "stress.db")))
	defer drv.Close()

	_, err := drv.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)")
	require.NoError(t, err)

	conn, err := drv.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Exec(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", int64(1), "alice"))
	require.NoError(t, conn.Close())

	rows, err := drv.Query(ctx, "SELECT id, name FROM users")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var id int64
	var name string
	require.NoError(t, rows.Scan(&id, &name))
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "alice", name)
	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}

func TestSQLiteExecReportsRowsAffected(t *testing.T) {
	ctx := context.Background()
	drv := NewSQLiteDriver(0)
	require.NoError(t, drv.Open(ctx, filepath.Join(t.TempDir(), "stress.db")))
	defer drv.Close()

	_, err := drv.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)")
	require.NoError(t, err)
	for i := int64(0); i < 3; i++ {
		_, err := drv.Exec(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", i, string(rune('a'+i)))
		require.NoError(t, err)
	}

	n, err := drv.Exec(ctx, "DELETE FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSQLiteDuplicateInsertIsFatalKind(t *testing.T) {
	ctx := context.Background()
	drv := NewSQLiteDriver(0)
	require.NoError(t, drv.Open(ctx, filepath.Join(t.TempDir(), "stress.db")))
	defer drv.Close()

	_, err := drv.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)")
	require.NoError(t, err)

	_, err = drv.Exec(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", int64(1), "alice")
	require.NoError(t, err)
	_, err = drv.Exec(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", int64(1), "bob")
	require.Error(t, err)
	assert.Equal(t, KindFatal, drv.Classify(err))
}
