package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/aristath/cryptofolio/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Sectors is the one-hot vocabulary for token feature vectors. A sector
// outside the vocabulary encodes as all zeros.
var Sectors = []string{"Layer1", "DeFi", "Gaming", "Memecoin", "Stablecoin", "Noname"}

// TokenVector builds the feature vector for a token:
// one-hot sector, a stablecoin flag, the mean embedding of its category
// tags, and the embedding of its description. Without an embedder the
// text blocks collapse to single zero slots, so structural features
// still compare.
func TokenVector(ctx context.Context, token domain.Token, embedder domain.TextEmbedder) ([]float64, error) {
	dim := 1
	if embedder != nil {
		dim = embedder.Dimensions()
	}

	sectorVec := oneHot(token.Sector, Sectors)
	stableVec := []float64{0.0}
	if token.IsStablecoin {
		stableVec[0] = 1.0
	}

	catVec, err := embedCategories(ctx, token.Categories, embedder, dim)
	if err != nil {
		return nil, err
	}

	descVec := make([]float64, dim)
	switch {
	case len(token.Embedding) == dim:
		copy(descVec, token.Embedding)
	case embedder != nil && token.Description != "":
		embedded, err := embedder.Embed(ctx, token.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to embed description for %s: %w", token.Symbol, err)
		}
		// An off-size embedding would skew the vector layout; keep the
		// zero block so structural features still compare.
		if len(embedded) == dim {
			descVec = embedded
		}
	}

	vec := make([]float64, 0, len(sectorVec)+1+len(catVec)+len(descVec))
	vec = append(vec, sectorVec...)
	vec = append(vec, stableVec...)
	vec = append(vec, catVec...)
	vec = append(vec, descVec...)

	return vec, nil
}

// FindSimilar ranks the portfolio's tokens by cosine similarity of their
// feature vectors against the query token and returns the top k. The
// query itself is excluded by symbol. Ties keep the input order.
func FindSimilar(ctx context.Context, tokens []domain.Token, query domain.Token, topK int, embedder domain.TextEmbedder) ([]domain.Token, error) {
	if topK <= 0 || len(tokens) == 0 {
		return []domain.Token{}, nil
	}

	queryVec, err := TokenVector(ctx, query, embedder)
	if err != nil {
		return nil, err
	}

	type scored struct {
		idx int
		sim float64
	}
	ranked := make([]scored, 0, len(tokens))

	for i, t := range tokens {
		vec, err := TokenVector(ctx, t, embedder)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{idx: i, sim: CosineSimilarity(queryVec, vec)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].sim > ranked[j].sim
	})

	results := make([]domain.Token, 0, topK)
	for _, r := range ranked {
		candidate := tokens[r.idx]
		if candidate.Symbol == query.Symbol {
			continue
		}
		results = append(results, candidate)
		if len(results) >= topK {
			break
		}
	}

	return results, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or a zero-norm vector score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0.0
	}

	return floats.Dot(a, b) / (na * nb)
}

func oneHot(value string, vocab []string) []float64 {
	vec := make([]float64, len(vocab))
	for i, v := range vocab {
		if v == value {
			vec[i] = 1.0
			break
		}
	}
	return vec
}

// embedCategories embeds each category tag separately and averages
// them. Off-size embeddings are dropped rather than fed to floats.Add,
// which panics on mismatched lengths.
func embedCategories(ctx context.Context, categories []string, embedder domain.TextEmbedder, dim int) ([]float64, error) {
	mean := make([]float64, dim)
	if len(categories) == 0 || embedder == nil {
		return mean, nil
	}

	added := 0
	for _, cat := range categories {
		vec, err := embedder.Embed(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("failed to embed category %q: %w", cat, err)
		}
		if len(vec) != dim {
			continue
		}
		floats.Add(mean, vec)
		added++
	}
	if added > 0 {
		floats.Scale(1/float64(added), mean)
	}

	return mean, nil
}
