package domain

import "context"

// PriceSource resolves the latest close price for a trading pair.
// The close price of a ticker response is treated as the authoritative
// current price.
type PriceSource interface {
	LatestClose(pair string) (float64, error)
}

// PriceSourceFunc adapts a plain function to the PriceSource interface.
type PriceSourceFunc func(pair string) (float64, error)

// LatestClose implements PriceSource.
func (f PriceSourceFunc) LatestClose(pair string) (float64, error) {
	return f(pair)
}

// PairResolver maps an asset symbol to its quote-pair identifier.
// ok is false when the asset is not tradable against the configured quote
// currency; such assets are skipped from the portfolio, not an error.
type PairResolver interface {
	PairFor(symbol string) (pair string, ok bool)
}

// TextEmbedder produces a dense vector for a piece of text. It is an
// optional capability: when absent, analytics degrades gracefully to zero
// vectors and never fails a build.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// Dimensions reports the output vector size, so missing inputs can be
	// mapped to a zero vector of matching width.
	Dimensions() int
}

// FillSource fetches the raw chronological fill history from the
// exchange. Reconciliation into open positions happens downstream.
type FillSource interface {
	GetTradesHistory(ctx context.Context) ([]Fill, error)
}

// BalanceSource fetches current account balances.
type BalanceSource interface {
	GetBalances(ctx context.Context) (Balances, error)
}
