// Package coingecko provides client functionality for the CoinGecko API,
// used to enrich holdings with market data and classification metadata.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cryptofolio/internal/domain"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Client is the CoinGecko API client. All endpoints used here are public.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new CoinGecko client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "coingecko").Logger(),
	}
}

// coinResponse mirrors the subset of /coins/{id} the application consumes.
type coinResponse struct {
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Rank       int      `json:"market_cap_rank"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	MarketData struct {
		CurrentPrice            map[string]float64 `json:"current_price"`
		TotalVolume             map[string]float64 `json:"total_volume"`
		MarketCap               map[string]float64 `json:"market_cap"`
		CirculatingSupply       float64            `json:"circulating_supply"`
		PriceChange24h          float64            `json:"price_change_24h"`
		PriceChangePercentage24 float64            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// FetchToken fetches market data and metadata for a coin and builds a
// Token record. The holding amount is supplied by the caller; CoinGecko
// knows nothing about the account.
func (c *Client) FetchToken(ctx context.Context, coinID string, holding float64) (domain.Token, error) {
	if coinID == "" {
		return domain.Token{}, &domain.MissingInputError{Field: "coin id"}
	}

	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")
	query.Set("sparkline", "false")

	requestURL := fmt.Sprintf("%s/coins/%s?%s", c.baseURL, url.PathEscape(coinID), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return domain.Token{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Token{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Token{}, &domain.TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("coin", coinID).Msg("coingecko returned non-200 status")
		return domain.Token{}, &domain.HTTPError{Status: resp.StatusCode}
	}

	var coin coinResponse
	if err := json.Unmarshal(body, &coin); err != nil {
		return domain.Token{}, fmt.Errorf("failed to parse coin response: %w", err)
	}

	return buildToken(coin, holding), nil
}

// buildToken assembles the immutable Token record from a parsed response.
func buildToken(coin coinResponse, holding float64) domain.Token {
	symbol := upper(coin.Symbol)

	token := domain.Token{
		Symbol:            symbol,
		Name:              coin.Name,
		Price:             coin.MarketData.CurrentPrice["usd"],
		Volume24h:         coin.MarketData.TotalVolume["usd"],
		MarketCap:         coin.MarketData.MarketCap["usd"],
		CirculatingSupply: coin.MarketData.CirculatingSupply,
		Change24h:         coin.MarketData.PriceChange24h,
		ChangePercent24h:  coin.MarketData.PriceChangePercentage24,
		Rank:              coin.Rank,
		HoldingAmount:     holding,
		Sector:            MapToSector(coin.Categories, symbol),
		RiskLevel:         riskLevel(coin.Rank),
		IsStablecoin:      IsStablecoin(symbol),
		Categories:        coin.Categories,
		Description:       coin.Description.EN,
	}

	return token
}

// riskLevel is a coarse bucketing by market-cap rank.
func riskLevel(rank int) string {
	switch {
	case rank > 0 && rank <= 10:
		return "Low"
	case rank > 10 && rank <= 100:
		return "Mid"
	default:
		return "High"
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}
