package sdk

// Typed payloads for the Kraken endpoints this application uses. Dynamic
// JSON is decoded into these records at the SDK boundary so nothing above
// it operates on loosely-typed maps.

// TickerInfo is one pair's entry in a Ticker response. Kraken reports most
// numeric fields as arrays of decimal strings.
type TickerInfo struct {
	Ask    []string `json:"a"` // price, whole lot volume, lot volume
	Bid    []string `json:"b"`
	Close  []string `json:"c"` // price, lot volume
	Volume []string `json:"v"` // today, last 24 hours
}

// TickerResult maps pair identifier to ticker info.
type TickerResult map[string]TickerInfo

// BalanceResult maps asset symbol to held quantity (decimal string).
type BalanceResult map[string]string

// FillRecord is one executed trade in a TradesHistory response.
type FillRecord struct {
	OrderTxid string  `json:"ordertxid"`
	Pair      string  `json:"pair"`
	Time      float64 `json:"time"`
	Type      string  `json:"type"`
	OrderType string  `json:"ordertype"`
	Price     string  `json:"price"`
	Cost      string  `json:"cost"`
	Fee       string  `json:"fee"`
	Vol       string  `json:"vol"`
	Margin    string  `json:"margin"`
}

// TradesHistoryResult is the result payload of TradesHistory. Trades is
// keyed by trade txid; iteration order is arbitrary.
type TradesHistoryResult struct {
	Trades map[string]FillRecord `json:"trades"`
	Count  int                   `json:"count"`
}

// AssetPairInfo is one pair's entry in an AssetPairs response.
type AssetPairInfo struct {
	Altname string `json:"altname"`
	WSName  string `json:"wsname"`
	Base    string `json:"base"`
	Quote   string `json:"quote"`
}

// AssetPairsResult maps pair identifier to pair info.
type AssetPairsResult map[string]AssetPairInfo

// AddOrderDescription describes the order the exchange accepted.
type AddOrderDescription struct {
	Order string `json:"order"`
	Close string `json:"close,omitempty"`
}

// AddOrderResult is the result payload of AddOrder.
type AddOrderResult struct {
	Descr AddOrderDescription `json:"descr"`
	Txid  []string            `json:"txid"`
}
