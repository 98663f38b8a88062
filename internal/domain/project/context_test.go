package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownContextDelegatesToProfile(t *testing.T) {
	p := &Profile{
		Domain:       "example.com",
		Niche:        "seo software",
		Title:        "Example",
		Description:  "Keyword research for small teams",
		Headings:     []string{"Features", "Pricing"},
		SeedKeywords: []string{"keyword research"},
		Competitors:  []string{"rival.com"},
	}
	ctx := Known(p)

	assert.Equal(t, KindKnown, ctx.Kind())
	assert.Equal(t, "example.com", ctx.Domain())
	assert.Equal(t, "seo software", ctx.Niche())
	assert.Equal(t, []string{"rival.com"}, ctx.Competitors())
	assert.Equal(t, []string{"keyword research"}, ctx.SeedKeywords())

	text := ctx.ProfileText()
	assert.Contains(t, text, "Title: Example")
	assert.Contains(t, text, "Headings: Features; Pricing")
}

func TestRawContext(t *testing.T) {
	ctx := Raw("  example.com ", "seo software", []string{"rival.com"})

	assert.Equal(t, KindRaw, ctx.Kind())
	assert.Equal(t, "example.com", ctx.Domain())
	assert.Equal(t, "seo software", ctx.Niche())
	assert.Equal(t, []string{"rival.com"}, ctx.Competitors())
	assert.Empty(t, ctx.SeedKeywords())
	assert.Equal(t, "Domain: example.com\nNiche: seo software", ctx.ProfileText())
}

func TestRawContextWithoutNiche(t *testing.T) {
	ctx := Raw("example.com", "", nil)
	assert.Equal(t, "Domain: example.com", ctx.ProfileText())
}
