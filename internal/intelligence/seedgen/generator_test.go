package seedgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankforge/rankforge/internal/domain/project"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

type stubCompleter struct {
	complete func(ctx context.Context, prompt string) (string, error)
	prompts  []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.complete(ctx, prompt)
}

func rawCtx() project.DomainContext {
	return project.Raw("example.com", "seo software", []string{"rival.com"})
}

func TestGenerateNormalizesAndDeduplicates(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return `["Keyword Research", "keyword research", "SEO Audit", "x"]`, nil
	}}
	seeds, err := NewGenerator(stub, 10).Generate(context.Background(), rawCtx())

	require.NoError(t, err)
	assert.Equal(t, []string{"keyword research", "seo audit"}, seeds)
}

func TestGenerateStripsCodeFences(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return "```json\n[\"keyword research\"]\n```", nil
	}}
	seeds, err := NewGenerator(stub, 10).Generate(context.Background(), rawCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"keyword research"}, seeds)
}

func TestGenerateRequestFailure(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return "", errors.New("overloaded")
	}}
	_, err := NewGenerator(stub, 10).Generate(context.Background(), rawCtx())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAIInferenceFailed, apperrors.GetCode(err))
}

func TestGenerateUnparsableResponse(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return "here are some ideas for you", nil
	}}
	_, err := NewGenerator(stub, 10).Generate(context.Background(), rawCtx())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAIResponseUnparsable, apperrors.GetCode(err))
}

func TestGenerateAllSeedsInvalid(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return `["x", "y"]`, nil
	}}
	_, err := NewGenerator(stub, 10).Generate(context.Background(), rawCtx())
	assert.Error(t, err)
}

func TestGeneratePromptCarriesContext(t *testing.T) {
	stub := &stubCompleter{complete: func(_ context.Context, _ string) (string, error) {
		return `["keyword research"]`, nil
	}}
	_, err := NewGenerator(stub, 15).Generate(context.Background(), rawCtx())
	require.NoError(t, err)

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "Domain: example.com")
	assert.Contains(t, stub.prompts[0], "Competitors: rival.com")
	assert.Contains(t, stub.prompts[0], "15 short seed phrases")
}
