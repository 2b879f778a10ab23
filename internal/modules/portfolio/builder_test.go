package portfolio

import (
	"context"
	"testing"

	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBalances struct {
	balances domain.Balances
	err      error
}

func (s *stubBalances) GetBalances(ctx context.Context) (domain.Balances, error) {
	return s.balances, s.err
}

type stubHistory struct {
	history domain.TradeHistory
	err     error
}

func (s *stubHistory) OpenPositionHistory(ctx context.Context) (domain.TradeHistory, error) {
	return s.history, s.err
}

func fixedPrices(prices map[string]float64) domain.PriceSource {
	return domain.PriceSourceFunc(func(pair string) (float64, error) {
		price, ok := prices[pair]
		if !ok {
			return 0, &domain.PriceUnavailableError{Symbol: pair}
		}
		return price, nil
	})
}

func newTestBuilder(balances domain.Balances, history domain.TradeHistory, prices map[string]float64) *Builder {
	return NewBuilder(
		&stubBalances{balances: balances},
		&stubHistory{history: history},
		StaticPairResolver{},
		fixedPrices(prices),
		zerolog.Nop(),
	)
}

func TestBuild_ProfitLossAgainstFillCosts(t *testing.T) {
	history := domain.TradeHistory{
		"XXBTZUSD": {
			{Pair: "XXBTZUSD", Type: domain.SideBuy, Cost: 5},
			{Pair: "XXBTZUSD", Type: domain.SideBuy, Cost: 7},
		},
	}
	builder := newTestBuilder(
		domain.Balances{"XXBT": 0.5},
		history,
		map[string]float64{"XXBTZUSD": 40},
	)

	p, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Positions, 1)

	pos := p.Positions[0]
	assert.Equal(t, "XXBT", pos.Symbol)
	assert.Equal(t, 0.5, pos.HoldingAmount)
	assert.Equal(t, 40.0, pos.Price)
	assert.InDelta(t, 20.0, pos.Value, 1e-9)
	assert.InDelta(t, 8.0, pos.ProfitLoss, 1e-9)
	assert.InDelta(t, 8.0, p.TotalProfitLoss, 1e-9)
}

func TestBuild_NoHistoryMeansZeroProfitLoss(t *testing.T) {
	builder := newTestBuilder(
		domain.Balances{"SOL": 2},
		domain.TradeHistory{},
		map[string]float64{"SOLUSD": 150},
	)

	p, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Positions, 1)
	assert.InDelta(t, 300.0, p.Positions[0].Value, 1e-9)
	assert.Equal(t, 0.0, p.Positions[0].ProfitLoss)
	assert.Equal(t, 0.0, p.TotalProfitLoss)
}

func TestBuild_SkipsUnmappedAndZeroBalances(t *testing.T) {
	builder := newTestBuilder(
		domain.Balances{"XXBT": 0, "KFEE": 120, "SOL": 1},
		domain.TradeHistory{},
		map[string]float64{"SOLUSD": 150},
	)

	p, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Positions, 1)
	assert.Equal(t, "SOL", p.Positions[0].Symbol)
}

func TestBuild_MissingPriceAbortsBuild(t *testing.T) {
	builder := newTestBuilder(
		domain.Balances{"XXBT": 1},
		domain.TradeHistory{},
		map[string]float64{},
	)

	_, err := builder.Build(context.Background())
	var priceErr *domain.PriceUnavailableError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, "XXBTZUSD", priceErr.Symbol)
}

func TestBuild_PositionsSortedByValueDescending(t *testing.T) {
	builder := newTestBuilder(
		domain.Balances{"SOL": 1, "XXBT": 1},
		domain.TradeHistory{},
		map[string]float64{"SOLUSD": 150, "XXBTZUSD": 40000},
	)

	p, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Positions, 2)
	assert.Equal(t, "XXBT", p.Positions[0].Symbol)
	assert.Equal(t, "SOL", p.Positions[1].Symbol)
}

func TestProfitLoss(t *testing.T) {
	fills := []domain.Fill{{Cost: 12}}
	assert.InDelta(t, 8.0, ProfitLoss(20, fills), 1e-9)
	assert.Equal(t, 0.0, ProfitLoss(20, nil))
	assert.InDelta(t, -5.0, ProfitLoss(10, []domain.Fill{{Cost: 15}}), 1e-9)
}

func TestStaticPairResolver(t *testing.T) {
	r := StaticPairResolver{}

	tests := []struct {
		symbol string
		pair   string
		ok     bool
	}{
		{"XXBT", "XXBTZUSD", true},
		{"XBT", "XXBTZUSD", true},
		{"xxbt", "XXBTZUSD", true},
		{"SOL", "SOLUSD", true},
		{"XETH", "XETHZUSD", true},
		{"USDT", "USDTZUSD", true},
		{"KFEE", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		pair, ok := r.PairFor(tt.symbol)
		assert.Equal(t, tt.ok, ok, "symbol %q", tt.symbol)
		assert.Equal(t, tt.pair, pair, "symbol %q", tt.symbol)
	}
}
