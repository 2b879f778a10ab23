package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredential is returned when the configured private key cannot
// be used for signing (malformed base64).
var ErrInvalidCredential = errors.New("invalid credential")

// TransportError wraps a connection-level failure (dial, timeout, DNS).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the exchange.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("exchange returned HTTP %d", e.Status)
}

// ExchangeError is a 2xx response whose body carries a non-empty error
// list - soft failures such as insufficient funds or an invalid pair.
type ExchangeError struct {
	Messages []string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange error: %s", strings.Join(e.Messages, "; "))
}

// PriceUnavailableError aborts a portfolio build when a held asset has no
// resolvable price. Partial portfolios are never returned.
type PriceUnavailableError struct {
	Symbol string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price available for %s", e.Symbol)
}

// MissingInputError reports a request that cannot be acted on, such as a
// limit order without a price.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}
