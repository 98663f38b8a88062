package keyword

import "math"

// ---
// Opportunity scoring
// ---

const (
	opportunityVolumeCap    = 2000
	opportunityVolumeWeight = 0.4
	opportunityDiffWeight   = 0.3
	opportunityRelWeight    = 30.0

	megaVolumeThreshold    = 10000
	lowRelevanceThreshold  = 0.4
	megaVolumePenalty      = 20.0
	tinyVolumeThreshold    = 50
	tinyVolumePenalty      = 20.0
	commercialIntentBonus  = 10.0
	educationalIntentBonus = 5.0
)

// ScoreOpportunity combines volume, difficulty, semantic similarity and
// intent into a single 0–100 score.  Returns nil unless both volume and
// difficulty are known.  When similarity was never computed it contributes
// zero, which also exposes high-volume keywords to the low-relevance penalty.
func ScoreOpportunity(volume, difficulty *int, similarity float64, hasSimilarity bool, intent Intent) *int {
	if volume == nil || difficulty == nil {
		return nil
	}

	vol := float64(*volume)
	sim := 0.0
	if hasSimilarity {
		sim = similarity
	}

	capped := math.Min(vol, opportunityVolumeCap)
	score := capped / opportunityVolumeCap * 100 * opportunityVolumeWeight
	score += float64(100-*difficulty) * opportunityDiffWeight
	score += sim * opportunityRelWeight

	if vol > megaVolumeThreshold && sim < lowRelevanceThreshold {
		score -= megaVolumePenalty
	}
	if vol < tinyVolumeThreshold {
		score -= tinyVolumePenalty
	}
	switch intent {
	case IntentCommercial:
		score += commercialIntentBonus
	case IntentInformational, IntentEducational:
		score += educationalIntentBonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	rounded := int(math.Round(score))
	return &rounded
}

// ApplyOpportunity fills c.Metrics.Opportunity in place using the candidate's
// similarity state. No-op when metrics are missing.
func ApplyOpportunity(c *Candidate) {
	if c == nil || c.Metrics == nil {
		return
	}
	c.Metrics.Opportunity = ScoreOpportunity(
		c.Metrics.Volume,
		c.Metrics.Difficulty,
		c.Similarity,
		c.HasSimilarity,
		c.Metrics.Intent,
	)
}
