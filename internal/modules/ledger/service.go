// Package ledger reconciles raw exchange fills into per-pair buy
// histories for open positions.
package ledger

import (
	"context"
	"fmt"

	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/rs/zerolog"
)

// Service fetches trade history from the exchange and reduces it to the
// fills that back currently open positions.
type Service struct {
	fills domain.FillSource
	log   zerolog.Logger
}

// NewService creates a ledger service.
func NewService(fills domain.FillSource, log zerolog.Logger) *Service {
	return &Service{
		fills: fills,
		log:   log.With().Str("module", "ledger").Logger(),
	}
}

// OpenPositionHistory returns buy fills grouped by pair, after applying
// the sell-reset rule to the full chronological trade history.
func (s *Service) OpenPositionHistory(ctx context.Context) (domain.TradeHistory, error) {
	fills, err := s.fills.GetTradesHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trade history: %w", err)
	}

	history := Reconcile(fills)

	s.log.Debug().
		Int("fills", len(fills)).
		Int("pairs", len(history)).
		Msg("reconciled trade history")

	return history, nil
}

// Reconcile reduces a chronological fill sequence to the buys backing
// open positions. A sell closes the position for its pair: any buys
// accumulated for that pair are discarded, and the sell itself is never
// kept. Only buys after the last sell remain attributed to the pair.
// Fills must already be in chronological order.
func Reconcile(fills []domain.Fill) domain.TradeHistory {
	history := make(domain.TradeHistory)

	for _, fill := range fills {
		if fill.Type == domain.SideSell {
			if _, ok := history[fill.Pair]; ok {
				history[fill.Pair] = []domain.Fill{}
			}
			continue
		}

		history[fill.Pair] = append(history[fill.Pair], fill)
	}

	return history
}
