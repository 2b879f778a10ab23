// Package trading exposes order placement on top of the exchange client.
package trading

import (
	"context"
	"fmt"

	"github.com/aristath/cryptofolio/internal/clients/kraken"
	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/rs/zerolog"
)

// OrderPlacer is the slice of the exchange client the trading service
// depends on.
type OrderPlacer interface {
	AddOrder(ctx context.Context, req kraken.OrderRequest) (*kraken.OrderResult, error)
}

// Service validates and places buy and sell orders.
type Service struct {
	exchange OrderPlacer
	log      zerolog.Logger
}

// NewService creates a trading service.
func NewService(exchange OrderPlacer, log zerolog.Logger) *Service {
	return &Service{
		exchange: exchange,
		log:      log.With().Str("module", "trading").Logger(),
	}
}

// Buy places a buy order. Market orders ignore price; limit orders
// require one.
func (s *Service) Buy(ctx context.Context, pair string, volume float64, orderType domain.OrderType, price float64) (*kraken.OrderResult, error) {
	return s.place(ctx, domain.SideBuy, pair, volume, orderType, price)
}

// Sell places a sell order with the same validation rules as Buy.
func (s *Service) Sell(ctx context.Context, pair string, volume float64, orderType domain.OrderType, price float64) (*kraken.OrderResult, error) {
	return s.place(ctx, domain.SideSell, pair, volume, orderType, price)
}

func (s *Service) place(ctx context.Context, side domain.Side, pair string, volume float64, orderType domain.OrderType, price float64) (*kraken.OrderResult, error) {
	if orderType == "" {
		orderType = domain.OrderTypeMarket
	}
	if orderType != domain.OrderTypeMarket && orderType != domain.OrderTypeLimit {
		return nil, &domain.MissingInputError{Field: "order_type"}
	}

	result, err := s.exchange.AddOrder(ctx, kraken.OrderRequest{
		Pair:      pair,
		Side:      side,
		OrderType: orderType,
		Volume:    volume,
		Price:     price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place %s order: %w", side, err)
	}

	s.log.Info().
		Str("pair", pair).
		Str("side", string(side)).
		Str("order_type", string(orderType)).
		Float64("volume", volume).
		Strs("txids", result.TransactionIDs).
		Msg("order placed")

	return result, nil
}
