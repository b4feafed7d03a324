package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAppliesPragmas(t *testing.T) {
	ctx := context.Background()

	database, err := Open(ctx, filepath.Join(t.TempDir(), "pragmas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	var foreignKeys int
	require.NoError(t, database.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var mode string
	require.NoError(t, database.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
	require.Equal(t, "wal", mode)

	require.NoError(t, Ping(ctx, database))
}

func TestOpenAppliesPragmasToEveryConnection(t *testing.T) {
	ctx := context.Background()

	database, err := Open(ctx, filepath.Join(t.TempDir(), "pool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	// Holding the first connection forces the pool to open a second one.
	held, err := database.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Close() })

	second, err := database.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	var foreignKeys, timeout int
	require.NoError(t, second.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys))
	require.NoError(t, second.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
	require.Equal(t, 1, foreignKeys)
	require.Equal(t, 5000, timeout)
}

func TestDSN(t *testing.T) {
	require.Equal(t,
		"quotes.db?_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29&_pragma=journal_mode%28WAL%29",
		dsn("quotes.db"))
	require.Contains(t, dsn("file:quotes?mode=memory&cache=shared"), "cache=shared&_pragma=")
}

func TestOpenMemoryKeepsOneConnection(t *testing.T) {
	ctx := context.Background()

	database, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = database.ExecContext(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM t`).Scan(&n))
	require.Equal(t, 1, n)
	require.Equal(t, 1, database.Stats().MaxOpenConnections)
}

func TestIsMemory(t *testing.T) {
	require.True(t, isMemory(":memory:"))
	require.True(t, isMemory("file:quotes?mode=memory&cache=shared"))
	require.False(t, isMemory("./quotedesk.db"))
}
