package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, profile Profile) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "test.db"),
		Profile: profile,
		Name:    "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_CreatesDatabase(t *testing.T) {
	db := newTestDB(t, ProfileCache)

	assert.Equal(t, "test", db.Name())
	assert.NotEmpty(t, db.Path())
	require.NoError(t, db.Conn().Ping())
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t, ProfileStandard)

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.QuickCheck(context.Background()))
}

func TestWALCheckpoint(t *testing.T) {
	db := newTestDB(t, ProfileCache)

	_, err := db.Conn().Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	require.NoError(t, db.WALCheckpoint(""))
	require.NoError(t, db.WALCheckpoint("PASSIVE"))
}
