package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestScoreOpportunityRequiresVolumeAndDifficulty(t *testing.T) {
	assert.Nil(t, ScoreOpportunity(nil, intPtr(50), 0, false, IntentMixed))
	assert.Nil(t, ScoreOpportunity(intPtr(1000), nil, 0, false, IntentMixed))
	assert.Nil(t, ScoreOpportunity(nil, nil, 0.9, true, IntentCommercial))
}

func TestScoreOpportunityBaseline(t *testing.T) {
	// volume 1000 -> 20, difficulty 50 -> 15, no similarity, mixed intent.
	score := ScoreOpportunity(intPtr(1000), intPtr(50), 0, false, IntentMixed)
	require.NotNil(t, score)
	assert.Equal(t, 35, *score)
}

func TestScoreOpportunityIntentBonuses(t *testing.T) {
	base := ScoreOpportunity(intPtr(1000), intPtr(50), 0, false, IntentMixed)
	commercial := ScoreOpportunity(intPtr(1000), intPtr(50), 0, false, IntentCommercial)
	informational := ScoreOpportunity(intPtr(1000), intPtr(50), 0, false, IntentInformational)
	educational := ScoreOpportunity(intPtr(1000), intPtr(50), 0, false, IntentEducational)

	assert.Equal(t, *base+10, *commercial)
	assert.Equal(t, *base+5, *informational)
	assert.Equal(t, *base+5, *educational)
}

func TestScoreOpportunityMegaVolumeLowRelevancePenalty(t *testing.T) {
	// High volume with weak relevance is penalized; the same candidate with
	// decent relevance is not.
	penalized := ScoreOpportunity(intPtr(15000), intPtr(20), 0.2, true, IntentMixed)
	clean := ScoreOpportunity(intPtr(15000), intPtr(20), 0.6, true, IntentMixed)

	require.NotNil(t, penalized)
	require.NotNil(t, clean)
	assert.Equal(t, 50, *penalized)
	assert.Equal(t, 82, *clean)
	assert.Less(t, *penalized, *clean)
}

func TestScoreOpportunityMissingSimilarityCountsAsZero(t *testing.T) {
	// A mega-volume keyword with no similarity signal still takes the
	// low-relevance penalty.
	withSignal := ScoreOpportunity(intPtr(15000), intPtr(20), 0.2, true, IntentMixed)
	withoutSignal := ScoreOpportunity(intPtr(15000), intPtr(20), 0, false, IntentMixed)
	assert.Equal(t, *withSignal-6, *withoutSignal)
}

func TestScoreOpportunityTinyVolumePenaltyAndClamp(t *testing.T) {
	score := ScoreOpportunity(intPtr(30), intPtr(50), 0, false, IntentMixed)
	require.NotNil(t, score)
	assert.Equal(t, 0, *score, "negative totals clamp to zero")
}

func TestScoreOpportunityStaysInRange(t *testing.T) {
	for _, vol := range []int{0, 30, 500, 2000, 9999, 15000} {
		for _, diff := range []int{0, 20, 50, 100} {
			for _, sim := range []float64{0, 0.3, 0.85, 1} {
				for _, intent := range []Intent{IntentMixed, IntentCommercial, IntentInformational} {
					score := ScoreOpportunity(intPtr(vol), intPtr(diff), sim, true, intent)
					require.NotNil(t, score)
					assert.GreaterOrEqual(t, *score, 0)
					assert.LessOrEqual(t, *score, 100)
				}
			}
		}
	}
}

func TestApplyOpportunity(t *testing.T) {
	c := &Candidate{
		Text:          "seo tools",
		Metrics:       &Metrics{Volume: intPtr(1000), Difficulty: intPtr(50), Intent: IntentMixed},
		Similarity:    0.5,
		HasSimilarity: true,
	}
	ApplyOpportunity(c)
	require.NotNil(t, c.Metrics.Opportunity)
	assert.Equal(t, 50, *c.Metrics.Opportunity)

	ApplyOpportunity(nil)
	ApplyOpportunity(&Candidate{Text: "no metrics"})
}
