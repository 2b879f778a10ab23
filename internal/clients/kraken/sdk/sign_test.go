package sdk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cryptofolio/internal/domain"
)

// testPrivateKey is the sample key from the Kraken API documentation.
const testPrivateKey = "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg=="

// TestSign_KnownVectors pins the signature algorithm against fixed vectors.
// The first case is the worked example from the Kraken API documentation.
func TestSign_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		nonce int64
		query string
		body  string
		want  string
	}{
		{
			name:  "kraken docs AddOrder example",
			path:  "/0/private/AddOrder",
			nonce: 1616492376594,
			query: "",
			body:  "nonce=1616492376594&ordertype=limit&pair=XBTUSD&price=37500&type=buy&volume=1.25",
			want:  "4/dpxb3iT4tp/ZCVEwSnEsLxx0bqyhLpdfOpc6fn7OR8+UClSV5n9E6aSS8MPtnRfp32bAb0nmbRn6H8ndwLUQ==",
		},
		{
			name:  "JSON body",
			path:  "/0/private/Balance",
			nonce: 1700000000000,
			query: "",
			body:  `{"nonce":"1700000000000"}`,
			want:  "A42AxA0GuboeMQyY8rMDik3GZEMwXq6bLqIVsrMeeVFB5oPRhUTON4g0fbgT/FT2k5BZIbYy/o9/eVEmaX7jVw==",
		},
		{
			name:  "query and body",
			path:  "/0/private/TradesHistory",
			nonce: 1700000000001,
			query: "trades=true",
			body:  `{"nonce":"1700000000001"}`,
			want:  "87NjJb8BgKxjt9JSue25a0NLp+4zS7CwwySsmo9R5tH5TJM8T+feNnS08In2mBbk4icVtzqeRicc/0/Ehvx5ng==",
		},
		{
			name:  "empty query and body",
			path:  "/0/private/Balance",
			nonce: 1,
			query: "",
			body:  "",
			want:  "tWkOfZqZrmzSXNfFxOAIkYQ/nvu042b9duJ3tZawClFquUAKd2syd7Td4QsxXprS4Vli/nu5f3h0jqBvE3cRgA==",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sign(testPrivateKey, tt.path, tt.nonce, tt.query, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSign_Deterministic(t *testing.T) {
	a, err := Sign(testPrivateKey, "/0/private/Balance", 42, "", "{}")
	require.NoError(t, err)
	b, err := Sign(testPrivateKey, "/0/private/Balance", 42, "", "{}")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSign_MalformedKey(t *testing.T) {
	_, err := Sign("not valid base64!!!", "/0/private/Balance", 1, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}
