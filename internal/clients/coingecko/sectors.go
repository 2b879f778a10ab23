package coingecko

import "strings"

// Static classification tables mapping free-text category tags to a
// sector label. This is a lookup, not an algorithm: first matching tag
// wins, unmatched tokens land in "Noname".

// sectorMap maps known tag substrings to sector labels. Order matters for
// overlapping tags, so the keys are scanned in this fixed order.
var sectorMapKeys = []string{
	"Layer 1",
	"L1",
	"Smart Contract Platform",
	"Layer 2",
	"L2",
	"DeFi",
	"Lending/Borrowing",
	"DEX",
	"Gaming",
	"GameFi",
	"NFT",
	"Meme",
}

var sectorMap = map[string]string{
	"Layer 1":                 "Layer1",
	"L1":                      "Layer1",
	"Smart Contract Platform": "Layer1",
	"Layer 2":                 "Layer2",
	"L2":                      "Layer2",
	"DeFi":                    "DeFi",
	"Lending/Borrowing":       "DeFi",
	"DEX":                     "DeFi",
	"Gaming":                  "Gaming",
	"GameFi":                  "Gaming",
	"NFT":                     "Gaming",
	"Meme":                    "Memecoin",
}

// stablecoinSymbols is the fixed set of symbols always classified as
// stablecoins regardless of tags.
var stablecoinSymbols = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
	"BUSD": true,
	"TUSD": true,
}

// IsStablecoin reports whether the symbol is in the stablecoin set.
func IsStablecoin(symbol string) bool {
	return stablecoinSymbols[upper(symbol)]
}

// MapToSector resolves free-text category tags to a sector label.
// Stablecoin symbols short-circuit the tag scan.
func MapToSector(tags []string, symbol string) string {
	if IsStablecoin(symbol) {
		return "Stablecoin"
	}

	for _, tag := range tags {
		lowered := strings.ToLower(tag)
		for _, key := range sectorMapKeys {
			if strings.Contains(lowered, strings.ToLower(key)) {
				return sectorMap[key]
			}
		}
	}
	return "Noname"
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
