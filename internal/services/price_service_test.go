package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/aristath/cryptofolio/internal/clientdata"
	"github.com/aristath/cryptofolio/internal/clients/kraken"
	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/aristath/cryptofolio/internal/modules/portfolio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fakeTickerSource struct {
	tickers map[string]kraken.Ticker
	err     error
	calls   int
}

func (f *fakeTickerSource) GetTicker(ctx context.Context, pairs ...string) (map[string]kraken.Ticker, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]kraken.Ticker)
	for _, p := range pairs {
		if t, ok := f.tickers[p]; ok {
			out[p] = t
		}
	}
	return out, nil
}

// LatestClose mirrors the real client: exact key first, then the
// single-entry canonical-name fallback.
func (f *fakeTickerSource) LatestClose(ctx context.Context, pair string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if t, ok := f.tickers[pair]; ok {
		return t.Close, nil
	}
	if len(f.tickers) == 1 {
		for _, t := range f.tickers {
			return t.Close, nil
		}
	}
	return 0, &domain.PriceUnavailableError{Symbol: pair}
}

func newTestCache(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := clientdata.NewRepository(db)
	require.NoError(t, repo.EnsureSchema())
	return repo
}

func TestLatestClose_FallsBackToREST(t *testing.T) {
	source := &fakeTickerSource{tickers: map[string]kraken.Ticker{
		"XXBTZUSD": {Pair: "XXBTZUSD", Close: 42000},
	}}
	svc := NewPriceService(source, newTestCache(t), zerolog.Nop())

	price, err := svc.LatestClose("XXBTZUSD")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, price)
	assert.Equal(t, 1, source.calls)

	// second lookup is served from the refilled cache
	price, err = svc.LatestClose("XXBTZUSD")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, price)
	assert.Equal(t, 1, source.calls)
}

func TestLatestClose_PrefersLiveFeed(t *testing.T) {
	source := &fakeTickerSource{tickers: map[string]kraken.Ticker{
		"SOLUSD": {Pair: "SOLUSD", Close: 150},
	}}
	svc := NewPriceService(source, newTestCache(t), zerolog.Nop())

	svc.HandlePriceUpdate("SOLUSD", 151.5)

	price, err := svc.LatestClose("SOLUSD")
	require.NoError(t, err)
	assert.Equal(t, 151.5, price)
	assert.Equal(t, 0, source.calls)
}

func TestLatestClose_AliasKeyedResponse(t *testing.T) {
	// Exchange answers under the canonical pair name, not the
	// requested alias. The REST tier must still serve the price.
	source := &fakeTickerSource{tickers: map[string]kraken.Ticker{
		"XXBTZUSD": {Pair: "XXBTZUSD", Close: 42000},
	}}
	svc := NewPriceService(source, newTestCache(t), zerolog.Nop())

	price, err := svc.LatestClose("XBTUSD")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, price)
}

func TestHandlePriceUpdate_FeedNameTranslation(t *testing.T) {
	// The feed pushes prices under websocket channel names while the
	// cache and builds are keyed by REST pair identifiers. The update
	// path must translate, or live prices never serve a build.
	source := &fakeTickerSource{tickers: map[string]kraken.Ticker{
		"XXBTZUSD": {Pair: "XXBTZUSD", Close: 111},
	}}
	svc := NewPriceService(source, newTestCache(t), zerolog.Nop())

	onUpdate := func(wsName string, close float64) {
		if pair, ok := portfolio.PairForWSName(wsName); ok {
			svc.HandlePriceUpdate(pair, close)
		}
	}
	onUpdate("XBT/USD", 99999)

	price, err := svc.LatestClose("XXBTZUSD")
	require.NoError(t, err)
	assert.Equal(t, 99999.0, price)
	assert.Equal(t, 0, source.calls)
}

func TestLatestClose_UnknownPair(t *testing.T) {
	svc := NewPriceService(&fakeTickerSource{}, newTestCache(t), zerolog.Nop())

	_, err := svc.LatestClose("NOPEUSD")
	var priceErr *domain.PriceUnavailableError
	assert.ErrorAs(t, err, &priceErr)
}

func TestHandlePriceUpdate_IgnoresNonPositive(t *testing.T) {
	source := &fakeTickerSource{}
	svc := NewPriceService(source, newTestCache(t), zerolog.Nop())

	svc.HandlePriceUpdate("SOLUSD", 0)
	svc.HandlePriceUpdate("SOLUSD", -3)

	_, err := svc.LatestClose("SOLUSD")
	assert.Error(t, err)
}

func TestRefreshPairs(t *testing.T) {
	source := &fakeTickerSource{tickers: map[string]kraken.Ticker{
		"XXBTZUSD": {Pair: "XXBTZUSD", Close: 42000},
		"SOLUSD":   {Pair: "SOLUSD", Close: 150},
	}}
	svc := NewPriceService(source, newTestCache(t), zerolog.Nop())

	require.NoError(t, svc.RefreshPairs(context.Background(), []string{"XXBTZUSD", "SOLUSD"}))
	assert.Equal(t, 1, source.calls)

	// both pairs now resolve without further REST calls
	for pair, want := range map[string]float64{"XXBTZUSD": 42000, "SOLUSD": 150} {
		price, err := svc.LatestClose(pair)
		require.NoError(t, err)
		assert.Equal(t, want, price)
	}
	assert.Equal(t, 1, source.calls)

	require.NoError(t, svc.RefreshPairs(context.Background(), nil))
	assert.Equal(t, 1, source.calls)
}
