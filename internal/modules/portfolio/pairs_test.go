package portfolio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackedWSNames_AreChannelNames(t *testing.T) {
	names := TrackedWSNames()
	require.NotEmpty(t, names)

	for _, name := range names {
		// Websocket subscriptions use "BASE/QUOTE" channel names and
		// reject REST pair identifiers like "XXBTZUSD".
		parts := strings.Split(name, "/")
		require.Len(t, parts, 2, "not a channel name: %s", name)
		assert.NotEmpty(t, parts[0])
		assert.Equal(t, "USD", parts[1])
	}
}

func TestPairForWSName_RoundTripsEveryTrackedPair(t *testing.T) {
	pairs := make(map[string]bool)
	for _, name := range TrackedWSNames() {
		pair, ok := PairForWSName(name)
		require.True(t, ok, "no pair for channel %s", name)
		pairs[pair] = true
	}

	for _, pair := range TrackedPairs() {
		assert.True(t, pairs[pair], "pair %s has no channel name", pair)
	}
}

func TestPairForWSName(t *testing.T) {
	tests := []struct {
		wsName string
		pair   string
		ok     bool
	}{
		{"XBT/USD", "XXBTZUSD", true},
		{"ETH/USD", "XETHZUSD", true},
		{"XDG/USD", "XDGUSD", true},
		{"SOL/USD", "SOLUSD", true},
		{"SHIB/USD", "", false},
		{"XXBTZUSD", "", false},
	}

	for _, tt := range tests {
		pair, ok := PairForWSName(tt.wsName)
		assert.Equal(t, tt.ok, ok, tt.wsName)
		assert.Equal(t, tt.pair, pair, tt.wsName)
	}
}
