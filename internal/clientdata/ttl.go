package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Current close prices feed portfolio valuation, keep them short-lived
	TTLCurrentPrice = time.Minute

	// CoinGecko token metadata (sector tags, descriptions) changes slowly
	TTLTokenMetadata = 24 * time.Hour
)

// Table names used by the cache.
const (
	TableCurrentPrices   = "current_prices"
	TableCoinGeckoTokens = "coingecko_tokens"
)
