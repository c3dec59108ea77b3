package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "segments.db")

	conn, err := Open(Config{Path: path})
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM segments").Scan(&count))
	assert.Equal(t, 0, count)
	require.NoError(t, conn.Close())

	// Reopening is a no-op for applied migrations
	conn, err = Open(Config{Path: path})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestLoadMigrationsOrder(t *testing.T) {
	files := fstest.MapFS{
		"002_second.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"001_first.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"README.md":      {Data: []byte("ignored")},
		"bad.sql":        {Data: []byte("ignored")},
	}

	migrations, err := NewMigrationManager(nil, files).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_first", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestTransactionRollback(t *testing.T) {
	conn, err := Open(Config{Path: filepath.Join(t.TempDir(), "tx.db")})
	require.NoError(t, err)
	defer conn.Close()

	boom := errors.New("boom")
	err = Transaction(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO segments (uuid, label, start_row, end_row, segment_path) VALUES ('u1', 'lap1', 0, 1, 'lap1.csv')`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM segments").Scan(&count))
	assert.Equal(t, 0, count)
}
