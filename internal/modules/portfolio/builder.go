// Package portfolio assembles account balances, live prices and
// reconciled trade history into a valued portfolio with profit/loss.
package portfolio

import (
	"context"
	"fmt"
	"sort"

	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/rs/zerolog"
)

// HistorySource provides buy fills grouped by pair for open positions.
type HistorySource interface {
	OpenPositionHistory(ctx context.Context) (domain.TradeHistory, error)
}

// Builder constructs portfolio snapshots on demand. It holds no state of
// its own; every Build call reflects the current balances and prices.
type Builder struct {
	balances domain.BalanceSource
	history  HistorySource
	pairs    domain.PairResolver
	prices   domain.PriceSource
	log      zerolog.Logger
}

// NewBuilder creates a portfolio builder.
func NewBuilder(
	balances domain.BalanceSource,
	history HistorySource,
	pairs domain.PairResolver,
	prices domain.PriceSource,
	log zerolog.Logger,
) *Builder {
	return &Builder{
		balances: balances,
		history:  history,
		pairs:    pairs,
		prices:   prices,
		log:      log.With().Str("module", "portfolio").Logger(),
	}
}

// Build produces a portfolio snapshot. Assets without a known USD pair
// and assets with a zero balance are skipped. A missing price for any
// included asset aborts the build rather than producing a partial,
// silently undervalued portfolio.
func (b *Builder) Build(ctx context.Context) (*domain.Portfolio, error) {
	balances, err := b.balances.GetBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}

	history, err := b.history.OpenPositionHistory(ctx)
	if err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{Positions: []domain.AssetPosition{}}

	for symbol, amount := range balances {
		pair, ok := b.pairs.PairFor(symbol)
		if !ok {
			b.log.Debug().Str("symbol", symbol).Msg("no USD pair, skipping asset")
			continue
		}
		if amount == 0 {
			continue
		}

		price, err := b.prices.LatestClose(pair)
		if err != nil {
			return nil, err
		}

		value := amount * price
		profitLoss := ProfitLoss(value, history[pair])

		portfolio.Positions = append(portfolio.Positions, domain.AssetPosition{
			Symbol:        symbol,
			HoldingAmount: amount,
			ProfitLoss:    profitLoss,
			Price:         price,
			Value:         value,
		})
		portfolio.TotalProfitLoss += profitLoss
	}

	// Map iteration order is random; keep the output stable.
	sort.Slice(portfolio.Positions, func(i, j int) bool {
		if portfolio.Positions[i].Value != portfolio.Positions[j].Value {
			return portfolio.Positions[i].Value > portfolio.Positions[j].Value
		}
		return portfolio.Positions[i].Symbol < portfolio.Positions[j].Symbol
	})

	b.log.Debug().
		Int("positions", len(portfolio.Positions)).
		Float64("total_profit_loss", portfolio.TotalProfitLoss).
		Msg("built portfolio")

	return portfolio, nil
}

// ProfitLoss computes the unrealized profit of a position valued at
// current, against the cost of the fills backing it. With no
// attributable fills there is no cost basis, and the profit is reported
// as zero rather than the full position value.
func ProfitLoss(current float64, fills []domain.Fill) float64 {
	if len(fills) == 0 {
		return 0
	}

	total := 0.0
	for _, fill := range fills {
		total += fill.Cost
	}

	return current - total
}
