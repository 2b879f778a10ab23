// Package services provides cross-module services composed from clients
// and the cache.
package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aristath/cryptofolio/internal/clientdata"
	"github.com/aristath/cryptofolio/internal/clients/kraken"
	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/rs/zerolog"
)

// TickerSource is the slice of the exchange client the price service
// depends on.
type TickerSource interface {
	GetTicker(ctx context.Context, pairs ...string) (map[string]kraken.Ticker, error)
	LatestClose(ctx context.Context, pair string) (float64, error)
}

// cachedPrice is the JSON blob stored in the current_prices table.
type cachedPrice struct {
	Price float64 `json:"price"`
}

// PriceService resolves current close prices with a 3-tier fallback:
// 1. Live price pushed from the websocket ticker feed
// 2. Fresh cached price from the cache database
// 3. REST ticker fetch, which also refills the cache
type PriceService struct {
	exchange TickerSource
	cache    *clientdata.Repository
	log      zerolog.Logger

	mu   sync.RWMutex
	live map[string]float64
}

// NewPriceService creates a price service. The cache may be nil, in
// which case only the live feed and REST tiers apply.
func NewPriceService(exchange TickerSource, cache *clientdata.Repository, log zerolog.Logger) *PriceService {
	return &PriceService{
		exchange: exchange,
		cache:    cache,
		log:      log.With().Str("service", "prices").Logger(),
		live:     make(map[string]float64),
	}
}

// LatestClose implements domain.PriceSource.
func (s *PriceService) LatestClose(pair string) (float64, error) {
	s.mu.RLock()
	price, ok := s.live[pair]
	s.mu.RUnlock()
	if ok && price > 0 {
		return price, nil
	}

	if s.cache != nil {
		raw, err := s.cache.GetIfFresh(clientdata.TableCurrentPrices, pair)
		if err != nil {
			s.log.Warn().Err(err).Str("pair", pair).Msg("price cache read failed")
		} else if raw != nil {
			var cached cachedPrice
			if err := json.Unmarshal(raw, &cached); err == nil && cached.Price > 0 {
				return cached.Price, nil
			}
		}
	}

	// The client handles alias-keyed ticker responses, so the REST
	// tier goes through its close-price lookup rather than GetTicker.
	price, err := s.exchange.LatestClose(context.Background(), pair)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, &domain.PriceUnavailableError{Symbol: pair}
	}

	s.storePrice(pair, price)
	return price, nil
}

// HandlePriceUpdate records a price pushed from the websocket feed.
func (s *PriceService) HandlePriceUpdate(pair string, close float64) {
	if close <= 0 {
		return
	}

	s.mu.Lock()
	s.live[pair] = close
	s.mu.Unlock()

	s.storePrice(pair, close)
}

// RefreshPairs fetches current tickers for the given pairs over REST and
// refills the cache. Used by the scheduled refresh job.
func (s *PriceService) RefreshPairs(ctx context.Context, pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}

	tickers, err := s.exchange.GetTicker(ctx, pairs...)
	if err != nil {
		return err
	}

	for pair, ticker := range tickers {
		if ticker.Close > 0 {
			s.storePrice(pair, ticker.Close)
		}
	}

	s.log.Debug().Int("pairs", len(tickers)).Msg("refreshed price cache")
	return nil
}

func (s *PriceService) storePrice(pair string, price float64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Store(clientdata.TableCurrentPrices, pair, cachedPrice{Price: price}, clientdata.TTLCurrentPrice); err != nil {
		s.log.Warn().Err(err).Str("pair", pair).Msg("price cache write failed")
	}
}
