package portfolio

import (
	"sort"
	"strings"
)

// tickerMapping describes how one asset appears across exchange APIs.
// Kraken reports some balances under legacy X-prefixed codes, so a single
// asset can surface under several ticker spellings.
type tickerMapping struct {
	Name      string
	Tickers   []string
	FiatPairs []string
	WSName    string // websocket channel name for the USD pair, e.g. "XBT/USD"
}

var tickerMappings = map[string]tickerMapping{
	"BTC": {
		Name:      "Bitcoin",
		Tickers:   []string{"XXBT", "XBT"},
		FiatPairs: []string{"XXBTZUSD"},
		WSName:    "XBT/USD",
	},
	"ETH": {
		Name:      "Ethereum",
		Tickers:   []string{"XETH", "ETH"},
		FiatPairs: []string{"XETHZUSD"},
		WSName:    "ETH/USD",
	},
	"SOL": {
		Name:      "Solana",
		Tickers:   []string{"SOL"},
		FiatPairs: []string{"SOLUSD"},
		WSName:    "SOL/USD",
	},
	"ADA": {
		Name:      "Cardano",
		Tickers:   []string{"ADA"},
		FiatPairs: []string{"ADAUSD"},
		WSName:    "ADA/USD",
	},
	"DOGE": {
		Name:      "Dogecoin",
		Tickers:   []string{"XDG", "XXDG"},
		FiatPairs: []string{"XDGUSD"},
		WSName:    "XDG/USD",
	},
	"DOT": {
		Name:      "Polkadot",
		Tickers:   []string{"DOT"},
		FiatPairs: []string{"DOTUSD"},
		WSName:    "DOT/USD",
	},
	"USDT": {
		Name:      "Tether",
		Tickers:   []string{"USDT"},
		FiatPairs: []string{"USDTZUSD"},
		WSName:    "USDT/USD",
	},
	"USDC": {
		Name:      "USD Coin",
		Tickers:   []string{"USDC"},
		FiatPairs: []string{"USDCUSD"},
		WSName:    "USDC/USD",
	},
}

// StaticPairResolver maps balance symbols to their USD quote pairs using
// the built-in ticker table. Symbols without a USD pair resolve to ok=false
// and are skipped by the portfolio builder.
type StaticPairResolver struct{}

// PairFor returns the USD trading pair for a balance symbol.
func (StaticPairResolver) PairFor(symbol string) (string, bool) {
	symbol = strings.ToUpper(symbol)

	for _, mapping := range tickerMappings {
		for _, ticker := range mapping.Tickers {
			if ticker != symbol {
				continue
			}
			for _, pair := range mapping.FiatPairs {
				if strings.Contains(pair, "USD") {
					return pair, true
				}
			}
		}
	}

	return "", false
}

// TrackedPairs returns every USD pair from the ticker table, sorted.
// These are REST pair identifiers; the price cache is keyed by them.
func TrackedPairs() []string {
	pairs := make([]string, 0, len(tickerMappings))
	for _, mapping := range tickerMappings {
		for _, pair := range mapping.FiatPairs {
			if strings.Contains(pair, "USD") {
				pairs = append(pairs, pair)
			}
		}
	}
	sort.Strings(pairs)
	return pairs
}

// TrackedWSNames returns the websocket channel names for every tracked
// USD pair, sorted. The websocket API rejects REST pair identifiers, so
// feed subscriptions must use these.
func TrackedWSNames() []string {
	names := make([]string, 0, len(tickerMappings))
	for _, mapping := range tickerMappings {
		if mapping.WSName != "" {
			names = append(names, mapping.WSName)
		}
	}
	sort.Strings(names)
	return names
}

// PairForWSName translates a websocket channel name back to the REST
// pair identifier the price cache is keyed by.
func PairForWSName(wsName string) (string, bool) {
	for _, mapping := range tickerMappings {
		if mapping.WSName != wsName {
			continue
		}
		for _, pair := range mapping.FiatPairs {
			if strings.Contains(pair, "USD") {
				return pair, true
			}
		}
	}
	return "", false
}
