package analytics

import (
	"testing"

	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(symbol, sector string, amount, price float64, stable bool) domain.Token {
	return domain.Token{
		Symbol:        symbol,
		Sector:        sector,
		HoldingAmount: amount,
		Price:         price,
		IsStablecoin:  stable,
	}
}

func TestSectorAllocation(t *testing.T) {
	tokens := []domain.Token{
		token("BTC", "Layer1", 1, 60, false),
		token("SOL", "Layer1", 100, 0.2, false),
		token("USDT", "Stablecoin", 20, 1, true),
	}

	alloc := SectorAllocation(tokens)

	require.Len(t, alloc, 2)
	assert.InDelta(t, 0.8, alloc["Layer1"], 1e-9)
	assert.InDelta(t, 0.2, alloc["Stablecoin"], 1e-9)

	sum := 0.0
	for _, w := range alloc {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSectorAllocation_ZeroTotal(t *testing.T) {
	tokens := []domain.Token{token("BTC", "Layer1", 0, 60000, false)}

	assert.Empty(t, SectorAllocation(tokens))
	assert.Empty(t, SectorAllocation(nil))
}

func TestHHI(t *testing.T) {
	t.Run("single asset is maximally concentrated", func(t *testing.T) {
		tokens := []domain.Token{token("BTC", "Layer1", 1, 60000, false)}
		assert.InDelta(t, 1.0, HHI(tokens), 1e-9)
	})

	t.Run("two equal positions", func(t *testing.T) {
		tokens := []domain.Token{
			token("BTC", "Layer1", 1, 50, false),
			token("SOL", "Layer1", 1, 50, false),
		}
		assert.InDelta(t, 0.5, HHI(tokens), 1e-9)
	})

	t.Run("bounded between 0 and 1", func(t *testing.T) {
		tokens := []domain.Token{
			token("BTC", "Layer1", 1, 70, false),
			token("SOL", "Layer1", 1, 20, false),
			token("USDT", "Stablecoin", 10, 1, true),
		}
		hhi := HHI(tokens)
		assert.Greater(t, hhi, 0.0)
		assert.LessOrEqual(t, hhi, 1.0)
	})

	t.Run("zero total value", func(t *testing.T) {
		assert.Equal(t, 0.0, HHI(nil))
		assert.Equal(t, 0.0, HHI([]domain.Token{token("BTC", "Layer1", 0, 60000, false)}))
	})

	t.Run("zero holdings are excluded from weights", func(t *testing.T) {
		tokens := []domain.Token{
			token("BTC", "Layer1", 1, 100, false),
			token("SOL", "Layer1", 0, 150, false),
		}
		assert.InDelta(t, 1.0, HHI(tokens), 1e-9)
	})
}

func TestStablecoinRatio(t *testing.T) {
	tokens := []domain.Token{
		token("BTC", "Layer1", 1, 75, false),
		token("USDT", "Stablecoin", 25, 1, true),
	}

	assert.InDelta(t, 0.25, StablecoinRatio(tokens), 1e-9)
	assert.Equal(t, 0.0, StablecoinRatio(nil))
}
