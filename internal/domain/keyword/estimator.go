package keyword

import (
	"context"
	"math"
	"strings"
)

// ---
// Heuristic thresholds
// ---

// All heuristic adjustments are named constants so the scoring model can be
// audited and tuned in one place.
const (
	volumeBase            = 100
	volumeShortBonusCap   = 50 // applied as (cap - wordcount*10) for short phrases
	volumeSEOBonus        = 200
	volumeBusinessBonus   = 150
	volumeContentBonus    = 100
	volumeFreeBonus       = 80
	volumeTemplateBonus   = 60
	volumeQuestionBonus   = 50
	volumeLongWordPenalty = 20 // per word beyond longPhraseWords
	volumeFloor           = 10

	difficultyBase            = 50
	difficultyShortScale      = 10 // applied as (shortPhraseWords - wordcount) * scale
	difficultyBestBonus       = 20
	difficultyTinyBonus       = 15 // phrases of at most 2 words
	difficultyLongPenalty     = 15 // phrases of at least 5 words
	difficultyQuestionPenalty = 10
	difficultyToolBonus       = 10
	difficultyFreePenalty     = 5
	difficultyTemplatePenalty = 10
	difficultyVeryLongPenalty = 15 // phrases of at least 6 words

	cpcBase          = 1.50
	cpcBusinessBonus = 1.00
	cpcToolBonus     = 0.50
	cpcFreePenalty   = 0.75
	cpcBestBonus     = 0.25
	cpcSEOBonus      = 0.50
	cpcFloor         = 0.10

	shortPhraseWords = 5
	longPhraseWords  = 4
)

var questionPrefixes = []string{"how to", "what is", "why", "when"}

func hasQuestionPrefix(text string) bool {
	for _, p := range questionPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// ---
// Heuristic estimators
// ---

// EstimateVolume estimates monthly search volume from the keyword text alone.
// Deterministic; input must already be normalized.
func EstimateVolume(text string) int {
	words := len(strings.Fields(text))
	volume := volumeBase

	if words <= shortPhraseWords {
		volume += volumeShortBonusCap - words*10
	}
	if containsAny(text, "seo", "marketing") {
		volume += volumeSEOBonus
	}
	if containsAny(text, "startup", "business") {
		volume += volumeBusinessBonus
	}
	if containsAny(text, "content", "article", "tool", "software", "generator") {
		volume += volumeContentBonus
	}
	if strings.Contains(text, "free") {
		volume += volumeFreeBonus
	}
	if containsAny(text, "template", "checklist") {
		volume += volumeTemplateBonus
	}
	if hasQuestionPrefix(text) {
		volume += volumeQuestionBonus
	}
	if words > longPhraseWords {
		volume -= (words - longPhraseWords) * volumeLongWordPenalty
	}

	if volume < volumeFloor {
		volume = volumeFloor
	}
	return volume
}

// EstimateDifficulty estimates ranking difficulty on a 0–100 scale.
func EstimateDifficulty(text string) int {
	words := len(strings.Fields(text))
	difficulty := difficultyBase

	if words < shortPhraseWords {
		difficulty += (shortPhraseWords - words) * difficultyShortScale
	}
	if strings.Contains(text, "best") {
		difficulty += difficultyBestBonus
	}
	if words <= 2 {
		difficulty += difficultyTinyBonus
	}
	if words >= 5 {
		difficulty -= difficultyLongPenalty
	}
	if hasQuestionPrefix(text) {
		difficulty -= difficultyQuestionPenalty
	}
	if containsAny(text, "tool", "software") {
		difficulty += difficultyToolBonus
	}
	if strings.Contains(text, "free") {
		difficulty -= difficultyFreePenalty
	}
	if containsAny(text, "template", "checklist") {
		difficulty -= difficultyTemplatePenalty
	}
	if words >= 6 {
		difficulty -= difficultyVeryLongPenalty
	}

	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty > 100 {
		difficulty = 100
	}
	return difficulty
}

// EstimateCPC estimates the cost-per-click in dollars, rounded to cents.
func EstimateCPC(text string) float64 {
	cpc := cpcBase

	if containsAny(text, "startup", "business", "marketing") {
		cpc += cpcBusinessBonus
	}
	if containsAny(text, "tool", "software") {
		cpc += cpcToolBonus
	}
	if strings.Contains(text, "free") {
		cpc -= cpcFreePenalty
	}
	if strings.Contains(text, "best") {
		cpc += cpcBestBonus
	}
	if strings.Contains(text, "seo") {
		cpc += cpcSEOBonus
	}

	if cpc < cpcFloor {
		cpc = cpcFloor
	}
	return math.Round(cpc*100) / 100
}

// ClassifyIntent assigns a search intent using ordered rule precedence:
// navigational, then commercial, transactional, informational, educational,
// with mixed as the fallback.
func ClassifyIntent(text string) Intent {
	switch {
	case containsAny(text, "login", "signup"):
		return IntentNavigational
	case containsAny(text, "tool", "software", "best"):
		return IntentCommercial
	case containsAny(text, "free", "online", "template"):
		return IntentTransactional
	case hasQuestionPrefix(text):
		return IntentInformational
	case containsAny(text, "guide", "tutorial", "framework"):
		return IntentEducational
	default:
		return IntentMixed
	}
}

// ---
// Estimator
// ---

// AdsMetrics is the response of a real ads-data provider for one keyword.
type AdsMetrics struct {
	Volume     int
	Difficulty int
	CPC        float64
}

// AdsProvider supplies real search metrics for a keyword.  Lookup returns
// (nil, nil) when the provider has no data; the estimator then falls back to
// heuristics for that keyword.
type AdsProvider interface {
	Lookup(ctx context.Context, text string) (*AdsMetrics, error)
}

// Estimator produces Metrics for keyword candidates.  When an AdsProvider is
// configured its data fully replaces the heuristic volume/difficulty/CPC for
// a keyword; heuristic and provider values are never mixed for the same
// keyword.  Intent is always heuristic.
type Estimator struct {
	provider AdsProvider
}

// NewEstimator builds an Estimator. provider may be nil.
func NewEstimator(provider AdsProvider) *Estimator {
	return &Estimator{provider: provider}
}

// Estimate computes Metrics for a normalized keyword.  Provider failures are
// soft: the estimator logs nothing itself and falls back to heuristics.
func (e *Estimator) Estimate(ctx context.Context, text string) *Metrics {
	intent := ClassifyIntent(text)

	if e.provider != nil {
		if m, err := e.provider.Lookup(ctx, text); err == nil && m != nil {
			vol, diff, cpc := m.Volume, m.Difficulty, m.CPC
			return &Metrics{Volume: &vol, Difficulty: &diff, CPC: &cpc, Intent: intent}
		}
	}

	vol := EstimateVolume(text)
	diff := EstimateDifficulty(text)
	cpc := EstimateCPC(text)
	return &Metrics{Volume: &vol, Difficulty: &diff, CPC: &cpc, Intent: intent}
}
