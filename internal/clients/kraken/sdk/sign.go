package sdk

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/aristath/cryptofolio/internal/domain"
)

// Sign computes the API-Sign header value for a private Kraken call.
//
// The message is path || SHA256(nonce || queryString || bodyString), signed
// with HMAC-SHA512 keyed by the base64-decoded private key, and the digest
// is base64-encoded. The exchange recomputes the same value, so this must
// match byte for byte.
func Sign(privateKey, path string, nonce int64, queryString, bodyString string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(privateKey)
	if err != nil {
		return "", fmt.Errorf("%w: private key is not valid base64: %v", domain.ErrInvalidCredential, err)
	}

	sha := sha256.Sum256([]byte(strconv.FormatInt(nonce, 10) + queryString + bodyString))

	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(sha[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
