// Package kraken provides client functionality for the Kraken exchange API.
package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/cryptofolio/internal/clients/kraken/sdk"
	"github.com/aristath/cryptofolio/internal/domain"
)

// SDKClient is the low-level request surface the high-level client needs.
// Satisfied by *sdk.Client; tests substitute a fake.
type SDKClient interface {
	Call(ctx context.Context, method, path string, query url.Values, body map[string]interface{}, private bool) (json.RawMessage, error)
}

// Ticker is the subset of ticker data the application consumes, with
// numeric fields parsed at the client boundary.
type Ticker struct {
	Pair      string  `json:"pair"`
	Ask       float64 `json:"ask"`
	Bid       float64 `json:"bid"`
	Close     float64 `json:"close"`
	Volume24h float64 `json:"volume_24h"`
}

// OrderRequest describes an order to place.
type OrderRequest struct {
	Pair      string
	Side      domain.Side
	OrderType domain.OrderType
	Volume    float64
	Price     float64 // required for limit orders
}

// OrderResult is the exchange's acknowledgement of a placed order.
type OrderResult struct {
	TransactionIDs []string `json:"txid"`
	Description    string   `json:"descr"`
	ClientOrderID  string   `json:"cl_ord_id"`
}

// Client is the high-level Kraken client.
type Client struct {
	sdk SDKClient
	log zerolog.Logger
}

// NewClient creates a new Kraken client with its own SDK client.
func NewClient(publicKey, privateKey string, log zerolog.Logger) *Client {
	return &Client{
		sdk: sdk.NewClient(publicKey, privateKey, log),
		log: log.With().Str("client", "kraken").Logger(),
	}
}

// NewClientWithSDK creates a Kraken client with a provided SDK client (for testing).
func NewClientWithSDK(sdkClient SDKClient, log zerolog.Logger) *Client {
	return &Client{
		sdk: sdkClient,
		log: log.With().Str("client", "kraken").Logger(),
	}
}

// GetTicker fetches ticker data for one or more pairs in a single call.
func (c *Client) GetTicker(ctx context.Context, pairs ...string) (map[string]Ticker, error) {
	if len(pairs) == 0 {
		return map[string]Ticker{}, nil
	}

	query := url.Values{}
	query.Set("pair", strings.Join(pairs, ","))

	result, err := c.sdk.Call(ctx, http.MethodGet, "/0/public/Ticker", query, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker: %w", err)
	}

	var raw sdk.TickerResult
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ticker response: %w", err)
	}

	tickers, err := transformTickers(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to transform ticker response: %w", err)
	}

	c.log.Debug().Int("pairs", len(tickers)).Msg("fetched tickers")
	return tickers, nil
}

// LatestClose returns the last trade close price for a pair. This is the
// authoritative current price for valuation.
func (c *Client) LatestClose(ctx context.Context, pair string) (float64, error) {
	tickers, err := c.GetTicker(ctx, pair)
	if err != nil {
		return 0, err
	}
	t, ok := tickers[pair]
	if !ok {
		// Kraken sometimes keys the response by the canonical pair name
		// rather than the requested alias; a single-entry response is
		// unambiguous either way.
		if len(tickers) == 1 {
			for _, only := range tickers {
				return only.Close, nil
			}
		}
		return 0, &domain.PriceUnavailableError{Symbol: pair}
	}
	return t.Close, nil
}

// ResolvePair looks up the exchange's pair identifier for a base/quote
// symbol pair. Returns empty string when the pair does not exist.
func (c *Client) ResolvePair(ctx context.Context, base, quote string) (string, error) {
	query := url.Values{}
	query.Set("pair", fmt.Sprintf("%s/%s", base, quote))

	result, err := c.sdk.Call(ctx, http.MethodGet, "/0/public/AssetPairs", query, nil, false)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset pair: %w", err)
	}

	var raw sdk.AssetPairsResult
	if err := json.Unmarshal(result, &raw); err != nil {
		return "", fmt.Errorf("failed to parse asset pairs response: %w", err)
	}

	for id := range raw {
		return id, nil
	}
	return "", nil
}

// GetBalances fetches current account balances. Quantities arrive as
// decimal strings and are parsed here; assets the account never touched
// are absent from the result.
func (c *Client) GetBalances(ctx context.Context) (domain.Balances, error) {
	result, err := c.sdk.Call(ctx, http.MethodPost, "/0/private/Balance", nil, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	var raw sdk.BalanceResult
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse balance response: %w", err)
	}

	balances, err := transformBalances(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to transform balances: %w", err)
	}

	c.log.Debug().Int("assets", len(balances)).Msg("fetched balances")
	return balances, nil
}

// GetTradesHistory fetches the account's executed fills. The result is
// unordered; reconciliation into per-pair open-position sequences is the
// ledger's job.
func (c *Client) GetTradesHistory(ctx context.Context) ([]domain.Fill, error) {
	result, err := c.sdk.Call(ctx, http.MethodPost, "/0/private/TradesHistory", nil, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades history: %w", err)
	}

	var raw sdk.TradesHistoryResult
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse trades history response: %w", err)
	}

	fills, err := transformFills(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to transform fills: %w", err)
	}

	c.log.Debug().Int("fills", len(fills)).Msg("fetched trade history")
	return fills, nil
}

// AddOrder places an order. Limit orders require a price; market orders
// ignore it. A fresh client order ID is attached so fills can be traced
// back to this process.
func (c *Client) AddOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if req.Pair == "" {
		return nil, &domain.MissingInputError{Field: "pair"}
	}
	if req.Volume <= 0 {
		return nil, &domain.MissingInputError{Field: "volume"}
	}
	if req.OrderType == domain.OrderTypeLimit && req.Price <= 0 {
		return nil, &domain.MissingInputError{Field: "price"}
	}

	clientOrderID := uuid.New().String()

	body := map[string]interface{}{
		"ordertype": string(req.OrderType),
		"type":      string(req.Side),
		"volume":    formatVolume(req.Volume),
		"pair":      req.Pair,
		"cl_ord_id": clientOrderID,
	}
	if req.OrderType == domain.OrderTypeLimit {
		body["price"] = formatVolume(req.Price)
	}

	result, err := c.sdk.Call(ctx, http.MethodPost, "/0/private/AddOrder", nil, body, true)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	var raw sdk.AddOrderResult
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse add order response: %w", err)
	}

	c.log.Info().
		Str("pair", req.Pair).
		Str("side", string(req.Side)).
		Str("cl_ord_id", clientOrderID).
		Strs("txid", raw.Txid).
		Msg("order placed")

	return &OrderResult{
		TransactionIDs: raw.Txid,
		Description:    raw.Descr.Order,
		ClientOrderID:  clientOrderID,
	}, nil
}
