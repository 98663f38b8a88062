// Package keyword holds the core keyword domain model: candidates surfaced by
// discovery sources, their estimated metrics, and the durable keyword rows
// produced by a research run.
package keyword

import (
	"context"
	"strings"
	"time"

	"github.com/rankforge/rankforge/pkg/types/common"
)

// ---
// Intent
// ---

// Intent describes the searcher's likely goal behind a keyword.
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
	IntentEducational   Intent = "educational"
	IntentMixed         Intent = "mixed"
)

// Valid reports whether the intent is one of the known values.
func (i Intent) Valid() bool {
	switch i {
	case IntentInformational, IntentCommercial, IntentTransactional,
		IntentNavigational, IntentEducational, IntentMixed:
		return true
	}
	return false
}

// ---
// Candidate
// ---

const (
	minCandidateLen = 3
	maxCandidateLen = 100
)

// Normalize lower-cases and trims a raw keyword string. The second return
// value reports whether the result is a usable candidate (length 3 to 100).
func Normalize(raw string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if n := len(text); n < minCandidateLen || n > maxCandidateLen {
		return "", false
	}
	return text, true
}

// Candidate is an ephemeral keyword surfaced during one research run.
// Identity is the normalized text; Sources lists every discovery source that
// produced it, in first-seen order without duplicates.
type Candidate struct {
	Text    string
	Sources []string

	Metrics *Metrics

	// Similarity to the run's domain profile, when computed.
	Similarity    float64
	HasSimilarity bool
}

// AddSource appends a source if the candidate does not carry it yet.
func (c *Candidate) AddSource(source string) {
	for _, s := range c.Sources {
		if s == source {
			return
		}
	}
	c.Sources = append(c.Sources, source)
}

// Pool accumulates candidates across sources, deduplicating by normalized
// text while preserving discovery order.
type Pool struct {
	byText map[string]*Candidate
	order  []string
}

// NewPool returns an empty candidate pool.
func NewPool() *Pool {
	return &Pool{byText: make(map[string]*Candidate)}
}

// Add normalizes raw and records it under the given source. Re-discovery of
// an existing candidate appends the source instead of duplicating the entry.
// Returns false when the string does not normalize to a valid candidate.
func (p *Pool) Add(raw, source string) bool {
	text, ok := Normalize(raw)
	if !ok {
		return false
	}
	c, exists := p.byText[text]
	if !exists {
		c = &Candidate{Text: text}
		p.byText[text] = c
		p.order = append(p.order, text)
	}
	c.AddSource(source)
	return true
}

// Get returns the candidate stored under the normalized form of raw.
func (p *Pool) Get(raw string) (*Candidate, bool) {
	text, ok := Normalize(raw)
	if !ok {
		return nil, false
	}
	c, exists := p.byText[text]
	return c, exists
}

// Remove drops a candidate by its normalized text.
func (p *Pool) Remove(text string) {
	if _, exists := p.byText[text]; !exists {
		return
	}
	delete(p.byText, text)
	for i, t := range p.order {
		if t == text {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// All returns the candidates in first-seen order.
func (p *Pool) All() []*Candidate {
	out := make([]*Candidate, 0, len(p.order))
	for _, text := range p.order {
		out = append(out, p.byText[text])
	}
	return out
}

// Len returns the number of distinct candidates.
func (p *Pool) Len() int { return len(p.order) }

// SourceCounts returns how many candidates each source contributed.
func (p *Pool) SourceCounts() map[string]int {
	counts := make(map[string]int)
	for _, text := range p.order {
		for _, s := range p.byText[text].Sources {
			counts[s] = counts[s] + 1
		}
	}
	return counts
}

// ---
// Metrics
// ---

// Metrics holds per-keyword estimates. Volume, Difficulty, CPC and
// Opportunity are nil when unknown; Opportunity is computed only once both
// volume and difficulty are present.
type Metrics struct {
	Volume      *int
	Difficulty  *int
	CPC         *float64
	Intent      Intent
	Opportunity *int
}

// ---
// Persisted keyword
// ---

// PersistedKeyword is the durable row written for each of the top-ranked
// candidates of a research run. Cluster fields start empty and are filled by
// the post-persistence clustering pass.
type PersistedKeyword struct {
	ID               common.ID
	RunID            common.ID
	Text             string
	Volume           *int
	Difficulty       *int
	CPC              *float64
	Opportunity      *int
	Intent           Intent
	Sources          []string
	ClusterID        *int
	IsRepresentative bool
	ClusterSize      int
	ClusterSiblings  []string
	CreatedAt        time.Time
}

// Repository is the persistence port for keywords.
type Repository interface {
	SaveBatch(ctx context.Context, keywords []*PersistedKeyword) error
	ListByRun(ctx context.Context, runID common.ID) ([]*PersistedKeyword, error)
	UpdateClusterMetadata(ctx context.Context, kw *PersistedKeyword) error
}
