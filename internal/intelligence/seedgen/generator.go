// Package seedgen bootstraps a research run with seed keywords generated from
// the domain context.
package seedgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/domain/project"
	"github.com/rankforge/rankforge/internal/intelligence/genai"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

// Generator produces seed keywords for a domain context via a generative
// model.
type Generator struct {
	completer genai.Completer
	count     int
}

// NewGenerator builds a Generator that asks for count seeds per request.
func NewGenerator(completer genai.Completer, count int) *Generator {
	if count <= 0 {
		count = 10
	}
	return &Generator{completer: completer, count: count}
}

// Generate returns normalized, deduplicated seed keywords.  Unlike the soft
// data sources, a total failure here is an error: without seeds the rest of
// the pipeline has nothing to expand.
func (g *Generator) Generate(ctx context.Context, domainCtx project.DomainContext) ([]string, error) {
	raw, err := g.completer.Complete(ctx, g.buildPrompt(domainCtx))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAIInferenceFailed, "seed generation request failed")
	}

	var seeds []string
	if err := json.Unmarshal([]byte(genai.ExtractJSON(raw)), &seeds); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAIResponseUnparsable, "seed generation returned unparsable output")
	}

	seen := make(map[string]bool, len(seeds))
	out := make([]string, 0, len(seeds))
	for _, s := range seeds {
		text, ok := keyword.Normalize(s)
		if !ok || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	if len(out) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeAIResponseUnparsable, "seed generation produced no usable seeds")
	}
	return out, nil
}

func (g *Generator) buildPrompt(domainCtx project.DomainContext) string {
	var b strings.Builder
	b.WriteString("You are an SEO strategist generating seed keywords for a website.\n\n")
	b.WriteString(domainCtx.ProfileText())
	if competitors := domainCtx.Competitors(); len(competitors) > 0 {
		b.WriteString("\nCompetitors: " + strings.Join(competitors, ", "))
	}
	fmt.Fprintf(&b, "\n\nSuggest %d short seed phrases describing topics this site should rank for.\n", g.count)
	b.WriteString(`Respond with only a JSON array of strings, e.g. ["keyword research", "seo audit"].`)
	return b.String()
}
