// Package domain provides core domain models and types.
package domain

// Side represents the direction of an executed trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType represents how an order is priced at the exchange.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Fill represents a single executed trade leg. Immutable once fetched.
//
// The JSON field set {pair, time, type, amount, price, cost, fee, margin}
// is a contract surface - external callers bind to these names.
type Fill struct {
	Pair   string  `json:"pair"`
	Time   float64 `json:"time"` // Unix seconds with fractional part, as the exchange reports it
	Type   Side    `json:"type"`
	Amount float64 `json:"amount"` // traded volume in base units
	Price  float64 `json:"price"`
	Cost   float64 `json:"cost"` // quote-currency cost including price*volume
	Fee    float64 `json:"fee"`
	Margin float64 `json:"margin"`
}

// TradeHistory maps a trading pair to its fills attributable to the
// currently open position, oldest first. A pair whose position was closed
// by a sell and never re-entered resolves to an empty sequence.
type TradeHistory map[string][]Fill

// Balances maps an asset symbol to the held quantity. Zero means "not held".
type Balances map[string]float64

// AssetPosition is one valued holding inside a portfolio.
//
// The JSON field set {symbol, holding_amount, profit_loss, price, value}
// is a contract surface - external callers bind to these names.
type AssetPosition struct {
	Symbol        string  `json:"symbol"`
	HoldingAmount float64 `json:"holding_amount"`
	ProfitLoss    float64 `json:"profit_loss"`
	Price         float64 `json:"price"`
	Value         float64 `json:"value"` // HoldingAmount * Price
}

// Portfolio is the result of one reconciliation cycle. Rebuilt fresh on
// every request, never persisted.
type Portfolio struct {
	Positions       []AssetPosition `json:"positions"`
	TotalProfitLoss float64         `json:"total_profit_loss"`
}

// Token carries market data and classification for a single asset, used by
// the analytics layer. Constructed once per fetch; derived fields such as
// Weight are recomputed by rebuilding the record, not by mutation in place.
type Token struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	Volume24h         float64  `json:"volume_24h"`
	MarketCap         float64  `json:"market_cap"`
	CirculatingSupply float64  `json:"circulating_supply"`
	Change24h         float64  `json:"change_24h"` // absolute price change
	ChangePercent24h  float64  `json:"change_percent_24h"`
	Rank              int      `json:"rank"`
	HoldingAmount     float64  `json:"holding_amount"`
	Weight            float64  `json:"weight"` // derived, fraction of total portfolio value
	Sector            string   `json:"sector"`
	RiskLevel         string   `json:"risk_level"`
	IsStablecoin      bool     `json:"is_stablecoin"`
	Categories        []string `json:"categories,omitempty"`
	Description       string   `json:"description,omitempty"`

	// Optional pre-computed embedding for the token's text metadata.
	// Nil when no embedder is configured; analytics degrades to zero vectors.
	Embedding []float64 `json:"-"`
}

// Value returns the token's current market value of the held amount.
func (t Token) Value() float64 {
	return t.HoldingAmount * t.Price
}

// WithHolding returns a copy of the token holding the given amount.
// Records are value types; adjusting a holding means constructing a new one.
func (t Token) WithHolding(amount float64) Token {
	t.HoldingAmount = amount
	return t
}
