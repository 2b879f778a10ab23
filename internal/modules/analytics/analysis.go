// Package analytics computes composition and similarity metrics over a
// set of held tokens.
package analytics

import "github.com/aristath/cryptofolio/internal/domain"

// SectorAllocation returns the fraction of total portfolio value held in
// each sector. An empty portfolio, or one whose holdings are all zero,
// yields an empty map.
func SectorAllocation(tokens []domain.Token) map[string]float64 {
	total := totalValue(tokens)
	if total == 0 {
		return map[string]float64{}
	}

	alloc := make(map[string]float64)
	for _, t := range tokens {
		alloc[t.Sector] += t.Value()
	}
	for sector, value := range alloc {
		alloc[sector] = value / total
	}

	return alloc
}

// HHI computes the Herfindahl-Hirschman index of portfolio concentration:
// the sum of squared value weights over tokens with a positive holding.
// Ranges from near 0 (diversified) to 1.0 (single asset). Zero total
// value yields 0.
func HHI(tokens []domain.Token) float64 {
	total := totalValue(tokens)
	if total == 0 {
		return 0.0
	}

	hhi := 0.0
	for _, t := range tokens {
		if t.HoldingAmount <= 0 {
			continue
		}
		w := t.Value() / total
		hhi += w * w
	}

	return hhi
}

// StablecoinRatio returns the fraction of total portfolio value held in
// stablecoins. Zero total value yields 0.
func StablecoinRatio(tokens []domain.Token) float64 {
	total := totalValue(tokens)
	if total == 0 {
		return 0.0
	}

	stable := 0.0
	for _, t := range tokens {
		if t.IsStablecoin {
			stable += t.Value()
		}
	}

	return stable / total
}

func totalValue(tokens []domain.Token) float64 {
	total := 0.0
	for _, t := range tokens {
		total += t.Value()
	}
	return total
}
