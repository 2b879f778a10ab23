package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.EnsureSchema())

	return repo
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := setupTestDB(t)

	data := map[string]interface{}{"price": 42000.5}
	require.NoError(t, repo.Store(TableCurrentPrices, "XXBTZUSD", data, time.Minute))

	raw, err := repo.GetIfFresh(TableCurrentPrices, "XXBTZUSD")
	require.NoError(t, err)
	require.NotNil(t, raw)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, 42000.5, parsed["price"])
}

func TestGetIfFresh_ExpiredReturnsNil(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Store(TableCurrentPrices, "SOLUSD", map[string]float64{"price": 150}, -time.Minute))

	raw, err := repo.GetIfFresh(TableCurrentPrices, "SOLUSD")
	require.NoError(t, err)
	assert.Nil(t, raw)

	// stale fallback still sees it
	raw, err = repo.Get(TableCurrentPrices, "SOLUSD")
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestGetIfFresh_MissingKey(t *testing.T) {
	repo := setupTestDB(t)

	raw, err := repo.GetIfFresh(TableCurrentPrices, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestStore_Upserts(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Store(TableCoinGeckoTokens, "bitcoin", map[string]string{"name": "old"}, time.Minute))
	require.NoError(t, repo.Store(TableCoinGeckoTokens, "bitcoin", map[string]string{"name": "new"}, time.Minute))

	raw, err := repo.GetIfFresh(TableCoinGeckoTokens, "bitcoin")
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "new", parsed["name"])
}

func TestValidateTable(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.Store("users; DROP TABLE current_prices", "k", "v", time.Minute)
	assert.Error(t, err)

	_, err = repo.Get("unknown_table", "k")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Store(TableCurrentPrices, "XXBTZUSD", map[string]float64{"price": 1}, time.Minute))
	require.NoError(t, repo.Delete(TableCurrentPrices, "XXBTZUSD"))

	raw, err := repo.Get(TableCurrentPrices, "XXBTZUSD")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDeleteAllExpired(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Store(TableCurrentPrices, "expired", map[string]float64{"price": 1}, -time.Minute))
	require.NoError(t, repo.Store(TableCurrentPrices, "fresh", map[string]float64{"price": 2}, time.Minute))
	require.NoError(t, repo.Store(TableCoinGeckoTokens, "stale-token", map[string]string{"name": "x"}, -time.Minute))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)

	assert.Equal(t, int64(1), results[TableCurrentPrices])
	assert.Equal(t, int64(1), results[TableCoinGeckoTokens])

	raw, err := repo.Get(TableCurrentPrices, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

type fakeCheckpointer struct {
	calls int
	mode  string
}

func (f *fakeCheckpointer) WALCheckpoint(mode string) error {
	f.calls++
	f.mode = mode
	return nil
}

func TestCleanupJob(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Store(TableCurrentPrices, "expired", map[string]float64{"price": 1}, -time.Minute))

	cp := &fakeCheckpointer{}
	job := NewCleanupJob(repo, cp, zerolog.Nop())
	assert.Equal(t, "client_data_cleanup", job.Name())
	require.NoError(t, job.Run())

	raw, err := repo.Get(TableCurrentPrices, "expired")
	require.NoError(t, err)
	assert.Nil(t, raw)

	assert.Equal(t, 1, cp.calls)
	assert.Equal(t, "TRUNCATE", cp.mode)
}

func TestCleanupJob_NilCheckpointer(t *testing.T) {
	repo := setupTestDB(t)

	job := NewCleanupJob(repo, nil, zerolog.Nop())
	require.NoError(t, job.Run())
}
