// Package project describes the domain a research run targets.
package project

import (
	"strings"

	"github.com/rankforge/rankforge/pkg/types/common"
)

// Profile is a crawled project profile: the site's own description of itself.
type Profile struct {
	ID           common.ID
	Domain       string
	Niche        string
	Title        string
	Description  string
	Headings     []string
	SeedKeywords []string
	Competitors  []string
}

// ContextKind discriminates the two DomainContext variants.
type ContextKind int

const (
	// KindKnown carries a full crawled profile.
	KindKnown ContextKind = iota
	// KindRaw carries only a domain string plus optional niche/competitors.
	KindRaw
)

// DomainContext is a tagged variant describing what the system knows about
// the target domain. Seed generation and competitor mining consume it through
// the accessor methods instead of sniffing concrete types.
type DomainContext struct {
	kind    ContextKind
	profile *Profile

	rawDomain      string
	rawNiche       string
	rawCompetitors []string
}

// Known wraps a full profile.
func Known(p *Profile) DomainContext {
	return DomainContext{kind: KindKnown, profile: p}
}

// Raw wraps a bare domain with optional niche and competitor list.
func Raw(domain, niche string, competitors []string) DomainContext {
	return DomainContext{
		kind:           KindRaw,
		rawDomain:      strings.TrimSpace(domain),
		rawNiche:       strings.TrimSpace(niche),
		rawCompetitors: append([]string(nil), competitors...),
	}
}

// Kind returns the variant tag.
func (c DomainContext) Kind() ContextKind { return c.kind }

// Domain returns the target domain name.
func (c DomainContext) Domain() string {
	if c.kind == KindKnown && c.profile != nil {
		return c.profile.Domain
	}
	return c.rawDomain
}

// Niche returns the niche descriptor, which may be empty for raw contexts.
func (c DomainContext) Niche() string {
	if c.kind == KindKnown && c.profile != nil {
		return c.profile.Niche
	}
	return c.rawNiche
}

// Competitors returns the known competitor domains.
func (c DomainContext) Competitors() []string {
	if c.kind == KindKnown && c.profile != nil {
		return c.profile.Competitors
	}
	return c.rawCompetitors
}

// SeedKeywords returns user-supplied seeds, if any.
func (c DomainContext) SeedKeywords() []string {
	if c.kind == KindKnown && c.profile != nil {
		return c.profile.SeedKeywords
	}
	return nil
}

// ProfileText renders the context as the prose block fed to AI prompts:
// title, description, niche and top headings when a profile is known, or the
// bare domain and niche otherwise.
func (c DomainContext) ProfileText() string {
	var b strings.Builder
	if c.kind == KindKnown && c.profile != nil {
		p := c.profile
		if p.Title != "" {
			b.WriteString("Title: " + p.Title + "\n")
		}
		if p.Description != "" {
			b.WriteString("Description: " + p.Description + "\n")
		}
		if p.Niche != "" {
			b.WriteString("Niche: " + p.Niche + "\n")
		}
		if len(p.Headings) > 0 {
			b.WriteString("Headings: " + strings.Join(p.Headings, "; ") + "\n")
		}
		if b.Len() == 0 && p.Domain != "" {
			b.WriteString("Domain: " + p.Domain + "\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString("Domain: " + c.rawDomain)
	if c.rawNiche != "" {
		b.WriteString("\nNiche: " + c.rawNiche)
	}
	return b.String()
}
