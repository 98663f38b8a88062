package relevance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter drives the filter with canned responses per call.
type stubCompleter struct {
	complete func(ctx context.Context, prompt string) (string, error)
	prompts  []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.complete(ctx, prompt)
}

func TestClassifyBatchParsesTiers(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return `{"0": "high", "1": "low", "2": "medium"}`, nil
	}}
	f := NewFilter(stub, 200, nil)

	got := f.ClassifyBatch(context.Background(), "Domain: example.com", []string{"seo tools", "cat videos", "marketing tips"})

	require.Len(t, got, 3)
	assert.Equal(t, Classification{Tier: TierHigh}, got["seo tools"])
	assert.Equal(t, Classification{Tier: TierLow}, got["cat videos"])
	assert.Equal(t, Classification{Tier: TierMedium}, got["marketing tips"])
}

func TestClassifyBatchStripsCodeFences(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return "```json\n{\"0\": \"HIGH\"}\n```", nil
	}}
	got := NewFilter(stub, 200, nil).ClassifyBatch(context.Background(), "p", []string{"seo tools"})
	assert.Equal(t, TierHigh, got["seo tools"].Tier)
	assert.False(t, got["seo tools"].Degraded)
}

func TestClassifyBatchFailedChunkDefaultsToMedium(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return "", errors.New("rate limited")
	}}
	candidates := []string{"one two", "three four", "five six"}
	got := NewFilter(stub, 200, nil).ClassifyBatch(context.Background(), "p", candidates)

	require.Len(t, got, len(candidates), "no candidate is dropped")
	for _, c := range candidates {
		assert.Equal(t, TierMedium, got[c].Tier)
		assert.True(t, got[c].Degraded)
		assert.Contains(t, got[c].Reason, "request failed")
	}
}

func TestClassifyBatchUnparsableResponseDefaultsToMedium(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return "I cannot classify these keywords.", nil
	}}
	got := NewFilter(stub, 200, nil).ClassifyBatch(context.Background(), "p", []string{"seo tools"})
	assert.Equal(t, TierMedium, got["seo tools"].Tier)
	assert.True(t, got["seo tools"].Degraded)
}

func TestClassifyBatchMissingIndexDefaultsToMedium(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return `{"0": "high"}`, nil
	}}
	got := NewFilter(stub, 200, nil).ClassifyBatch(context.Background(), "p", []string{"seo tools", "forgotten keyword"})

	assert.Equal(t, Classification{Tier: TierHigh}, got["seo tools"])
	assert.Equal(t, TierMedium, got["forgotten keyword"].Tier)
	assert.True(t, got["forgotten keyword"].Degraded)
	assert.Equal(t, "absent from response", got["forgotten keyword"].Reason)
}

func TestClassifyBatchChunksInput(t *testing.T) {
	// Each chunk is indexed from zero, so a per-chunk responder can answer
	// uniformly.
	stub := &stubCompleter{}
	stub.complete = func(_ context.Context, _ string) (string, error) {
		return `{"0": "high", "1": "low"}`, nil
	}
	candidates := []string{"kw one", "kw two", "kw three", "kw four", "kw five"}
	got := NewFilter(stub, 2, nil).ClassifyBatch(context.Background(), "p", candidates)

	assert.Len(t, stub.prompts, 3)
	require.Len(t, got, 5)
	assert.Equal(t, TierHigh, got["kw one"].Tier)
	assert.Equal(t, TierLow, got["kw two"].Tier)
	assert.Equal(t, TierHigh, got["kw three"].Tier)
	assert.Equal(t, TierLow, got["kw four"].Tier)
	assert.Equal(t, TierHigh, got["kw five"].Tier)
}

func TestClassifyBatchOnlyFailedChunkDegrades(t *testing.T) {
	call := 0
	stub := &stubCompleter{}
	stub.complete = func(_ context.Context, _ string) (string, error) {
		call++
		if call == 2 {
			return "", errors.New("timeout")
		}
		return `{"0": "high", "1": "high"}`, nil
	}
	candidates := []string{"kw one", "kw two", "kw three", "kw four"}
	got := NewFilter(stub, 2, nil).ClassifyBatch(context.Background(), "p", candidates)

	assert.False(t, got["kw one"].Degraded)
	assert.False(t, got["kw two"].Degraded)
	assert.True(t, got["kw three"].Degraded)
	assert.True(t, got["kw four"].Degraded)
}

func TestPromptIncludesProfileAndIndexes(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return `{}`, nil
	}}
	NewFilter(stub, 200, nil).ClassifyBatch(context.Background(), "Niche: seo software", []string{"keyword research"})

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "Niche: seo software")
	assert.Contains(t, stub.prompts[0], fmt.Sprintf("%d. %s", 0, "keyword research"))
}
