// Package sdk provides the low-level Kraken REST client: request signing,
// nonce management, and response normalization.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cryptofolio/internal/domain"
)

const defaultBaseURL = "https://api.kraken.com"

// Client is the Kraken REST SDK client. One client owns one NonceSource,
// so nonce monotonicity holds across concurrent callers of the same
// credential.
type Client struct {
	baseURL    string
	publicKey  string
	privateKey string
	httpClient *http.Client
	nonces     *NonceSource
	log        zerolog.Logger
}

// NewClient creates a new Kraken SDK client. Credentials may be empty for
// public-only use; private calls will then fail with ErrInvalidCredential.
func NewClient(publicKey, privateKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		publicKey:  publicKey,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		nonces:     NewNonceSource(),
		log:        log.With().Str("component", "kraken-sdk").Logger(),
	}
}

// apiResponse is the envelope every Kraken endpoint returns.
type apiResponse struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Call issues a request against the exchange and returns the decoded
// result payload.
//
// The canonical query string is built once and reused for both the URL and
// the signature input. For private calls the nonce is attached to the body
// before serializing, and the signature covers the URL-encoded query plus
// the JSON-encoded body plus the nonce. Failures are classified into
// domain.TransportError, domain.HTTPError and domain.ExchangeError; no
// retries happen here - retry policy belongs to the caller.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body map[string]interface{}, private bool) (json.RawMessage, error) {
	queryString := query.Encode()

	var (
		bodyString string
		headers    = make(http.Header)
	)

	if private {
		if c.publicKey == "" || c.privateKey == "" {
			return nil, fmt.Errorf("%w: API key pair not configured", domain.ErrInvalidCredential)
		}

		nonce := c.nonces.Next()

		payload := make(map[string]interface{}, len(body)+1)
		for k, v := range body {
			payload[k] = v
		}
		payload["nonce"] = strconv.FormatInt(nonce, 10)

		encoded, err := stringify(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyString = encoded

		signature, err := Sign(c.privateKey, path, nonce, queryString, bodyString)
		if err != nil {
			return nil, err
		}

		headers.Set("API-Key", c.publicKey)
		headers.Set("API-Sign", signature)
	} else if len(body) > 0 {
		encoded, err := stringify(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyString = encoded
	}

	requestURL := c.baseURL + path
	if queryString != "" {
		requestURL += "?" + queryString
	}

	var reader io.Reader
	if bodyString != "" {
		reader = bytes.NewReader([]byte(bodyString))
		headers.Set("Content-Type", "application/json")
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Bool("private", private).
		Msg("calling exchange API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("exchange returned non-2xx status")
		return nil, &domain.HTTPError{Status: resp.StatusCode}
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse exchange response: %w", err)
	}

	if len(envelope.Error) > 0 {
		c.log.Warn().
			Strs("messages", envelope.Error).
			Str("path", path).
			Msg("exchange returned error list")
		return nil, &domain.ExchangeError{Messages: envelope.Error}
	}

	return envelope.Result, nil
}

// stringify produces compact JSON (no spaces) so the serialized body and
// the signed bytes are identical.
func stringify(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}
