package similarity

import (
	"context"

	"github.com/rankforge/rankforge/internal/intelligence/embedding"
)

// Scored pairs a candidate with its similarity to the base text and the
// vector it was scored with, so callers can reuse embeddings without a second
// provider round trip.  Degraded marks scores derived from a zero-vector
// fallback on either side.
type Scored struct {
	Item       string
	Similarity float64
	Vector     []float64
	Degraded   bool
}

// Engine computes base-versus-candidates similarity using an embedding
// provider.
type Engine struct {
	provider embedding.Provider
}

// NewEngine builds an Engine.
func NewEngine(provider embedding.Provider) *Engine {
	return &Engine{provider: provider}
}

// BatchSimilarity embeds the base text and every candidate once, then scores
// each candidate against the base by index.  Degraded embeddings score 0.0.
func (e *Engine) BatchSimilarity(ctx context.Context, base string, candidates []string) []Scored {
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, base)
	texts = append(texts, candidates...)

	results := e.provider.EmbedBatch(ctx, texts)
	baseRes := results[0]

	scored := make([]Scored, len(candidates))
	for i, candidate := range candidates {
		res := results[i+1]
		scored[i] = Scored{
			Item:       candidate,
			Similarity: Cosine(baseRes.Vector, res.Vector),
			Vector:     res.Vector,
			Degraded:   baseRes.Degraded || res.Degraded,
		}
	}
	return scored
}
