package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB_PragmasOnEveryConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tempo.db")
	database, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	assert.FileExists(t, path)

	ctx := context.Background()
	c1, err := database.Conn(ctx)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := database.Conn(ctx)
	require.NoError(t, err)
	defer c2.Close()

	for i, conn := range []*sql.Conn{c1, c2} {
		var fk, timeout int
		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, 1, fk, "conn %d", i)
		assert.Equal(t, 5000, timeout, "conn %d", i)
		assert.Equal(t, "wal", mode, "conn %d", i)
	}
}

func TestOpenDB_Memory(t *testing.T) {
	database, err := OpenDB(memoryPath)
	require.NoError(t, err)
	defer database.Close()

	var fk int
	require.NoError(t, database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}
