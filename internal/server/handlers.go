package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/cryptofolio/internal/clients/kraken"
	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/aristath/cryptofolio/internal/modules/analytics"
)

// PortfolioProvider builds portfolio snapshots.
type PortfolioProvider interface {
	Build(ctx context.Context) (*domain.Portfolio, error)
}

// HistoryProvider returns the reconciled trade history.
type HistoryProvider interface {
	OpenPositionHistory(ctx context.Context) (domain.TradeHistory, error)
}

// OrderService places validated orders.
type OrderService interface {
	Buy(ctx context.Context, pair string, volume float64, orderType domain.OrderType, price float64) (*kraken.OrderResult, error)
	Sell(ctx context.Context, pair string, volume float64, orderType domain.OrderType, price float64) (*kraken.OrderResult, error)
}

// TokenProvider fetches token market data for analytics.
type TokenProvider interface {
	GetToken(ctx context.Context, coinID string, holding float64) (domain.Token, error)
	Embedder() domain.TextEmbedder
}

// PairLookup resolves base/quote symbols to exchange pair identifiers.
type PairLookup interface {
	ResolvePair(ctx context.Context, base, quote string) (string, error)
}

// Handlers holds the API handlers and their dependencies.
type Handlers struct {
	portfolio PortfolioProvider
	history   HistoryProvider
	trading   OrderService
	tokens    TokenProvider
	pairs     PairLookup
	log       zerolog.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(
	portfolio PortfolioProvider,
	history HistoryProvider,
	trading OrderService,
	tokens TokenProvider,
	pairs PairLookup,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		portfolio: portfolio,
		history:   history,
		trading:   trading,
		tokens:    tokens,
		pairs:     pairs,
		log:       log.With().Str("handler", "api").Logger(),
	}
}

// HandleGetPortfolio returns the current portfolio with profit/loss.
// GET /api/portfolio
func (h *Handlers) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.portfolio.Build(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// HandleGetTradeHistory returns buy fills backing open positions, by pair.
// GET /api/portfolio/history
func (h *Handlers) HandleGetTradeHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.history.OpenPositionHistory(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, history)
}

// orderRequest is the body of POST /api/orders.
type orderRequest struct {
	Pair      string  `json:"pair"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
	Volume    float64 `json:"volume"`
	Price     float64 `json:"price"`
}

// HandlePlaceOrder places a buy or sell order.
// POST /api/orders
func (h *Handlers) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		result *kraken.OrderResult
		err    error
	)
	switch domain.Side(req.Side) {
	case domain.SideBuy:
		result, err = h.trading.Buy(r.Context(), req.Pair, req.Volume, domain.OrderType(req.OrderType), req.Price)
	case domain.SideSell:
		result, err = h.trading.Sell(r.Context(), req.Pair, req.Volume, domain.OrderType(req.OrderType), req.Price)
	default:
		h.writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleResolvePair resolves a base/quote symbol pair to the exchange's
// pair identifier. GET /api/pairs/resolve?base=XBT&quote=USD
func (h *Handlers) HandleResolvePair(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	quote := r.URL.Query().Get("quote")
	if base == "" {
		h.writeError(w, http.StatusBadRequest, "base is required")
		return
	}
	if quote == "" {
		h.writeError(w, http.StatusBadRequest, "quote is required")
		return
	}

	pair, err := h.pairs.ResolvePair(r.Context(), base, quote)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if pair == "" {
		h.writeError(w, http.StatusNotFound, "pair not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"pair": pair})
}

// holdingRef identifies a token by CoinGecko id with a held amount.
type holdingRef struct {
	CoinID  string  `json:"coin_id"`
	Holding float64 `json:"holding"`
}

// assessRequest is the body of POST /api/analytics/assess.
type assessRequest struct {
	Tokens []holdingRef `json:"tokens"`
}

// assessResponse carries portfolio composition metrics.
type assessResponse struct {
	SectorAllocation map[string]float64 `json:"sector_allocation"`
	HHI              float64            `json:"hhi"`
	StablecoinRatio  float64            `json:"stablecoin_ratio"`
	Tokens           []domain.Token     `json:"tokens"`
}

// HandleAssessPortfolio computes sector allocation, concentration and
// stablecoin exposure for a set of holdings.
// POST /api/analytics/assess
func (h *Handlers) HandleAssessPortfolio(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tokens) == 0 {
		h.writeError(w, http.StatusBadRequest, "tokens must not be empty")
		return
	}

	tokens, err := h.resolveTokens(r.Context(), req.Tokens)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, assessResponse{
		SectorAllocation: analytics.SectorAllocation(tokens),
		HHI:              analytics.HHI(tokens),
		StablecoinRatio:  analytics.StablecoinRatio(tokens),
		Tokens:           tokens,
	})
}

// similarRequest is the body of POST /api/analytics/similar.
type similarRequest struct {
	CoinID     string       `json:"coin_id"`
	Candidates []holdingRef `json:"candidates"`
	TopK       int          `json:"top_k"`
}

// HandleFindSimilar ranks candidate tokens by similarity to the query
// token. POST /api/analytics/similar
func (h *Handlers) HandleFindSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CoinID == "" {
		h.writeError(w, http.StatusBadRequest, "coin_id is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	query, err := h.tokens.GetToken(r.Context(), req.CoinID, 0)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	candidates, err := h.resolveTokens(r.Context(), req.Candidates)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	similar, err := analytics.FindSimilar(r.Context(), candidates, query, req.TopK, h.tokens.Embedder())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"similar": similar,
	})
}

func (h *Handlers) resolveTokens(ctx context.Context, refs []holdingRef) ([]domain.Token, error) {
	tokens := make([]domain.Token, 0, len(refs))
	for _, ref := range refs {
		if ref.CoinID == "" {
			return nil, &domain.MissingInputError{Field: "coin_id"}
		}
		token, err := h.tokens.GetToken(ctx, ref.CoinID, ref.Holding)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// writeDomainError maps domain error types to HTTP status codes.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	var (
		missingErr   *domain.MissingInputError
		priceErr     *domain.PriceUnavailableError
		exchangeErr  *domain.ExchangeError
		httpErr      *domain.HTTPError
		transportErr *domain.TransportError
	)

	switch {
	case errors.As(err, &missingErr):
		h.writeError(w, http.StatusBadRequest, missingErr.Error())
	case errors.As(err, &priceErr):
		h.writeError(w, http.StatusBadGateway, priceErr.Error())
	case errors.As(err, &exchangeErr):
		h.writeError(w, http.StatusBadGateway, exchangeErr.Error())
	case errors.As(err, &httpErr):
		h.writeError(w, http.StatusBadGateway, httpErr.Error())
	case errors.As(err, &transportErr):
		h.writeError(w, http.StatusServiceUnavailable, "exchange unreachable")
	case errors.Is(err, domain.ErrInvalidCredential):
		h.writeError(w, http.StatusUnauthorized, "exchange credentials rejected")
	default:
		h.log.Error().Err(err).Msg("request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
