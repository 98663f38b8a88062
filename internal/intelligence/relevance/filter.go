// Package relevance classifies keyword candidates into confidence tiers
// relative to a domain profile, via a generative model.
package relevance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/intelligence/genai"
)

// Tier is a relevance confidence level.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Classification is the outcome for one candidate.  Degraded distinguishes a
// genuine model verdict from a fail-open default; Reason says why the default
// was applied.
type Classification struct {
	Tier     Tier
	Degraded bool
	Reason   string
}

// Filter classifies batches of candidates against a domain profile.  Input is
// split into fixed-size chunks to respect model context limits; a chunk-wide
// request failure defaults every candidate in that chunk to medium, and a
// candidate missing from an otherwise-valid response also defaults to medium.
// Candidates are never dropped here.
type Filter struct {
	completer genai.Completer
	chunkSize int
	logger    logging.Logger
}

// NewFilter builds a Filter. chunkSize must be positive.
func NewFilter(completer genai.Completer, chunkSize int, logger logging.Logger) *Filter {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Filter{completer: completer, chunkSize: chunkSize, logger: logger}
}

// ClassifyBatch returns a classification for every candidate.
func (f *Filter) ClassifyBatch(ctx context.Context, profileText string, candidates []string) map[string]Classification {
	result := make(map[string]Classification, len(candidates))

	for start := 0; start < len(candidates); start += f.chunkSize {
		end := start + f.chunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		f.classifyChunk(ctx, profileText, candidates[start:end], result)
	}
	return result
}

func (f *Filter) classifyChunk(ctx context.Context, profileText string, chunk []string, result map[string]Classification) {
	raw, err := f.completer.Complete(ctx, buildPrompt(profileText, chunk))
	if err != nil {
		f.logger.Warn("relevance chunk request failed, defaulting to medium",
			logging.Int("chunk_size", len(chunk)),
			logging.Err(err))
		for _, c := range chunk {
			result[c] = Classification{Tier: TierMedium, Degraded: true, Reason: "request failed: " + err.Error()}
		}
		return
	}

	var tiers map[string]string
	if err := json.Unmarshal([]byte(genai.ExtractJSON(raw)), &tiers); err != nil {
		f.logger.Warn("relevance response unparsable, defaulting to medium",
			logging.Int("chunk_size", len(chunk)),
			logging.Err(err))
		for _, c := range chunk {
			result[c] = Classification{Tier: TierMedium, Degraded: true, Reason: "unparsable response"}
		}
		return
	}

	for i, c := range chunk {
		tier, ok := parseTier(tiers[strconv.Itoa(i)])
		if !ok {
			result[c] = Classification{Tier: TierMedium, Degraded: true, Reason: "absent from response"}
			continue
		}
		result[c] = Classification{Tier: tier}
	}
}

func parseTier(s string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierHigh:
		return TierHigh, true
	case TierMedium:
		return TierMedium, true
	case TierLow:
		return TierLow, true
	}
	return "", false
}

func buildPrompt(profileText string, chunk []string) string {
	var b strings.Builder
	b.WriteString("You are evaluating keyword relevance for a website.\n\n")
	b.WriteString("Website profile:\n")
	b.WriteString(profileText)
	b.WriteString("\n\nCandidate keywords (by index):\n")
	for i, c := range chunk {
		fmt.Fprintf(&b, "%d. %s\n", i, c)
	}
	b.WriteString("\nClassify each candidate's relevance to the website as high, medium or low.\n")
	b.WriteString(`Respond with only a JSON object mapping index to tier, e.g. {"0": "high", "1": "low"}.`)
	return b.String()
}
