// Package textembed provides a Gemini-backed text embedding client.
// It is an optional capability: when no API key is configured the
// application runs without it and analytics degrades to zero vectors.
package textembed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-embedding-001"
	defaultDimensions = 256
)

// Embedder produces dense vectors for text via the Gemini embeddings API.
// Construct once at startup and reuse; the underlying client is safe for
// concurrent use.
type Embedder struct {
	client *genai.Client
	model  string
	dims   int
	log    zerolog.Logger
}

// New creates an Embedder. The genai client reads its API key from the
// environment (GEMINI_API_KEY / GOOGLE_API_KEY).
func New(ctx context.Context, log zerolog.Logger) (*Embedder, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding client: %w", err)
	}

	return &Embedder{
		client: client,
		model:  defaultModel,
		dims:   defaultDimensions,
		log:    log.With().Str("client", "textembed").Logger(),
	}, nil
}

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	config := &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(e.dims)),
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}

	values := resp.Embeddings[0].Values
	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}

	e.log.Debug().Int("dims", len(vec)).Msg("embedded text")
	return vec, nil
}

// Dimensions reports the configured output vector size.
func (e *Embedder) Dimensions() int {
	return e.dims
}
