package services

import (
	"context"
	"encoding/json"

	"github.com/aristath/cryptofolio/internal/clientdata"
	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/rs/zerolog"
)

// TokenFetcher is the slice of the CoinGecko client the token service
// depends on.
type TokenFetcher interface {
	FetchToken(ctx context.Context, coinID string, holding float64) (domain.Token, error)
}

// cachedToken persists a fetched token together with its description
// embedding, which the Token JSON contract itself never exposes.
type cachedToken struct {
	Token     domain.Token `json:"token"`
	Embedding []float64    `json:"embedding,omitempty"`
}

// TokenService fetches token market data and classification, cache-first,
// and attaches description embeddings when an embedder is configured.
type TokenService struct {
	coingecko TokenFetcher
	cache     *clientdata.Repository
	embedder  domain.TextEmbedder // nil when embeddings are disabled
	log       zerolog.Logger
}

// NewTokenService creates a token service. Both cache and embedder are
// optional.
func NewTokenService(coingecko TokenFetcher, cache *clientdata.Repository, embedder domain.TextEmbedder, log zerolog.Logger) *TokenService {
	return &TokenService{
		coingecko: coingecko,
		cache:     cache,
		embedder:  embedder,
		log:       log.With().Str("service", "tokens").Logger(),
	}
}

// GetToken returns the token for a CoinGecko coin id, holding the given
// amount. Served from cache when fresh, fetched and cached otherwise.
func (s *TokenService) GetToken(ctx context.Context, coinID string, holding float64) (domain.Token, error) {
	if cached, ok := s.fromCache(coinID); ok {
		return cached.WithHolding(holding), nil
	}

	token, err := s.coingecko.FetchToken(ctx, coinID, holding)
	if err != nil {
		return domain.Token{}, err
	}

	if s.embedder != nil && token.Description != "" {
		vec, err := s.embedder.Embed(ctx, token.Description)
		if err != nil {
			// Embeddings are an enrichment, not a requirement
			s.log.Warn().Err(err).Str("coin_id", coinID).Msg("description embedding failed")
		} else {
			token.Embedding = vec
		}
	}

	s.store(coinID, token)
	return token, nil
}

// GetTokens fetches several tokens with zero holdings, skipping none:
// any single failure fails the batch.
func (s *TokenService) GetTokens(ctx context.Context, coinIDs []string) ([]domain.Token, error) {
	tokens := make([]domain.Token, 0, len(coinIDs))
	for _, id := range coinIDs {
		token, err := s.GetToken(ctx, id, 0)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Embedder returns the configured text embedder, nil when disabled.
func (s *TokenService) Embedder() domain.TextEmbedder {
	return s.embedder
}

func (s *TokenService) fromCache(coinID string) (domain.Token, bool) {
	if s.cache == nil {
		return domain.Token{}, false
	}

	raw, err := s.cache.GetIfFresh(clientdata.TableCoinGeckoTokens, coinID)
	if err != nil {
		s.log.Warn().Err(err).Str("coin_id", coinID).Msg("token cache read failed")
		return domain.Token{}, false
	}
	if raw == nil {
		return domain.Token{}, false
	}

	var cached cachedToken
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.Token{}, false
	}

	cached.Token.Embedding = cached.Embedding
	return cached.Token, true
}

func (s *TokenService) store(coinID string, token domain.Token) {
	if s.cache == nil {
		return
	}

	entry := cachedToken{Token: token, Embedding: token.Embedding}
	if err := s.cache.Store(clientdata.TableCoinGeckoTokens, coinID, entry, clientdata.TTLTokenMetadata); err != nil {
		s.log.Warn().Err(err).Str("coin_id", coinID).Msg("token cache write failed")
	}
}
