package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PriceRefresher refreshes cached prices for a set of pairs.
type PriceRefresher interface {
	RefreshPairs(ctx context.Context, pairs []string) error
}

// PriceRefreshJob keeps the price cache warm for the tracked pairs so
// portfolio builds rarely have to fall back to REST calls.
type PriceRefreshJob struct {
	prices  PriceRefresher
	pairs   []string
	timeout time.Duration
	log     zerolog.Logger
}

// NewPriceRefreshJob creates a price refresh job for the given pairs.
func NewPriceRefreshJob(prices PriceRefresher, pairs []string, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		prices:  prices,
		pairs:   pairs,
		timeout: 20 * time.Second,
		log:     log.With().Str("job", "price_refresh").Logger(),
	}
}

// Run executes one refresh cycle.
func (j *PriceRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.prices.RefreshPairs(ctx, j.pairs); err != nil {
		j.log.Error().Err(err).Msg("Failed to refresh price cache")
		return err
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *PriceRefreshJob) Name() string {
	return "price_refresh"
}
