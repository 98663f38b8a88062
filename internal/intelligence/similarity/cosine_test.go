package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankforge/rankforge/internal/intelligence/embedding"
)

func TestCosineIdenticalVectors(t *testing.T) {
	v := []float64{0.3, 0.5, 0.2}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
}

func TestCosineOrthogonalVectors(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
}

func TestCosineNegativeClampsToZero(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, []float64{-1, 0}))
}

func TestCosineDegenerateInputsAreExactlyZero(t *testing.T) {
	v := []float64{1, 2, 3}
	assert.Equal(t, 0.0, Cosine(nil, v))
	assert.Equal(t, 0.0, Cosine(v, nil))
	assert.Equal(t, 0.0, Cosine([]float64{}, v))
	assert.Equal(t, 0.0, Cosine(v, []float64{1, 2}))
	assert.Equal(t, 0.0, Cosine(v, []float64{0, 0, 0}))
	assert.Equal(t, 0.0, Cosine([]float64{0, 0, 0}, []float64{0, 0, 0}))
}

func TestCosineRange(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0},
		{0.5, 0.5, 0.5},
		{-0.2, 0.9, 0.1},
		{3, -1, 2},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			sim := Cosine(a, b)
			assert.False(t, math.IsNaN(sim))
			assert.GreaterOrEqual(t, sim, 0.0)
			assert.LessOrEqual(t, sim, 1.0)
		}
	}
}

// stubProvider returns canned embeddings keyed by text.
type stubProvider struct {
	vectors map[string][]float64
	dim     int
}

func (s *stubProvider) EmbedBatch(_ context.Context, texts []string) []embedding.Result {
	out := make([]embedding.Result, len(texts))
	for i, text := range texts {
		if v, ok := s.vectors[text]; ok {
			out[i] = embedding.Result{Vector: v}
		} else {
			out[i] = embedding.Result{Vector: make([]float64, s.dim), Degraded: true, Reason: "stub miss"}
		}
	}
	return out
}

func (s *stubProvider) Dimension() int { return s.dim }

func TestBatchSimilarityPairsByIndex(t *testing.T) {
	provider := &stubProvider{dim: 2, vectors: map[string][]float64{
		"seo":       {1, 0},
		"seo tools": {1, 0},
		"cooking":   {0, 1},
	}}
	engine := NewEngine(provider)

	scored := engine.BatchSimilarity(context.Background(), "seo", []string{"seo tools", "cooking", "unknown"})
	require.Len(t, scored, 3)

	assert.Equal(t, "seo tools", scored[0].Item)
	assert.InDelta(t, 1.0, scored[0].Similarity, 1e-9)
	assert.False(t, scored[0].Degraded)

	assert.InDelta(t, 0.0, scored[1].Similarity, 1e-9)
	assert.False(t, scored[1].Degraded)

	// Unknown text degrades to a zero-vector and scores exactly zero.
	assert.Equal(t, 0.0, scored[2].Similarity)
	assert.True(t, scored[2].Degraded)
}

func TestBatchSimilarityDegradedBase(t *testing.T) {
	provider := &stubProvider{dim: 2, vectors: map[string][]float64{
		"seo tools": {1, 0},
	}}
	scored := NewEngine(provider).BatchSimilarity(context.Background(), "missing base", []string{"seo tools"})
	require.Len(t, scored, 1)
	assert.Equal(t, 0.0, scored[0].Similarity)
	assert.True(t, scored[0].Degraded)
}
