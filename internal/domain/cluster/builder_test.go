package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{Threshold: 0.85, MaxClusterSize: 10, MaxPasses: 100}
}

// tagSimilarity treats the first embedding component as a group tag: members
// with equal tags score above the threshold, everything else below it.
func tagSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if a[0] == b[0] {
		return 0.9
	}
	return 0.1
}

func tagged(text string, volume, opportunity int, tag float64) Member {
	return Member{Text: text, Volume: volume, Opportunity: opportunity, Embedding: []float64{tag}}
}

func TestBuildGroupsNearDuplicates(t *testing.T) {
	members := []Member{
		tagged("seo tools", 1000, 35, 1),
		tagged("tools for seo", 500, 30, 1),
		tagged("seo tool", 300, 30, 1),
		tagged("content marketing", 800, 40, 2),
	}

	result := NewBuilder(defaultParams(), tagSimilarity).Build(members)

	require.Len(t, result.Groups, 1)
	require.Len(t, result.Singletons, 1)

	group := result.Groups[0]
	assert.Equal(t, 1, group.ID)
	assert.Len(t, group.Members, 3)
	assert.Equal(t, "seo tools", group.Representative.Text)
	assert.Equal(t, []string{"tools for seo", "seo tool"}, group.Siblings)
	assert.Equal(t, "content marketing", result.Singletons[0].Text)
}

func TestBuildIsIdempotentAcrossInputOrder(t *testing.T) {
	forward := []Member{
		tagged("alpha one", 100, 10, 1),
		tagged("alpha two", 90, 10, 1),
		tagged("beta one", 100, 10, 2),
		tagged("beta two", 90, 10, 2),
	}
	reversed := []Member{forward[3], forward[1], forward[2], forward[0]}

	b := NewBuilder(defaultParams(), tagSimilarity)
	partition := func(r Result) map[string]map[string]bool {
		out := make(map[string]map[string]bool)
		for _, g := range r.Groups {
			set := make(map[string]bool)
			for _, m := range g.Members {
				set[m.Text] = true
			}
			out[g.Representative.Text] = set
		}
		return out
	}

	first := partition(b.Build(forward))
	second := partition(b.Build(reversed))
	assert.Equal(t, first, second, "same partition regardless of input order")

	// Re-running on identical input is stable.
	assert.Equal(t, first, partition(b.Build(forward)))
}

func TestBuildRespectsMaxClusterSize(t *testing.T) {
	var members []Member
	for i := 0; i < 12; i++ {
		members = append(members, tagged(
			string(rune('a'+i))+" keyword", 100, 10, 1))
	}

	result := NewBuilder(defaultParams(), tagSimilarity).Build(members)

	total := 0
	for _, g := range result.Groups {
		assert.LessOrEqual(t, len(g.Members), 10)
		total += len(g.Members)
	}
	total += len(result.Singletons)
	assert.Equal(t, 12, total, "every member lands in exactly one place")
	require.Len(t, result.Groups, 2)
	assert.Len(t, result.Groups[0].Members, 10)
	assert.Len(t, result.Groups[1].Members, 2)
}

func TestBuildDegradedSimilarityLeavesSingletons(t *testing.T) {
	// A fully-failed embedding stage resolves every similarity to zero, so
	// nothing merges.
	zeroSim := func(_, _ []float64) float64 { return 0 }
	members := []Member{
		tagged("seo tools", 1000, 35, 1),
		tagged("seo tool", 300, 30, 1),
		tagged("tools for seo", 500, 30, 1),
	}

	result := NewBuilder(defaultParams(), zeroSim).Build(members)

	assert.Empty(t, result.Groups)
	assert.Len(t, result.Singletons, 3)
	assert.Equal(t, 1, result.Passes, "converges after one merge-free pass")
}

func TestRepresentativeTieBreaksOnShorterText(t *testing.T) {
	members := []Member{
		tagged("seo tools", 100, 10, 1),
		tagged("seo tool", 100, 10, 1),
	}
	result := NewBuilder(defaultParams(), tagSimilarity).Build(members)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, "seo tool", result.Groups[0].Representative.Text)
	assert.Equal(t, []string{"seo tools"}, result.Groups[0].Siblings)
}

func TestRepresentativeTreatsUnknownMetricsAsZero(t *testing.T) {
	members := []Member{
		tagged("no metrics here", 0, 0, 1),
		tagged("scored keyword", 50, 20, 1),
	}
	result := NewBuilder(defaultParams(), tagSimilarity).Build(members)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, "scored keyword", result.Groups[0].Representative.Text)
}

func TestBuildPassesBounded(t *testing.T) {
	params := defaultParams()
	params.MaxPasses = 3
	members := []Member{
		tagged("alpha one", 1, 1, 1),
		tagged("alpha two", 1, 1, 1),
	}
	result := NewBuilder(params, tagSimilarity).Build(members)
	assert.LessOrEqual(t, result.Passes, 3)
	assert.GreaterOrEqual(t, result.Passes, 1)
	require.Len(t, result.Groups, 1)
}

func TestUnionFindSameSetNeverRemerges(t *testing.T) {
	uf := newUnionFind(3)
	require.False(t, uf.same(0, 1))

	root := uf.union(0, 1)
	assert.Equal(t, 0, root)
	assert.True(t, uf.same(0, 1))
	assert.Equal(t, 2, uf.sizeOf(1))

	// Re-unioning an existing set must not inflate its size.
	assert.Equal(t, 0, uf.union(1, 0))
	assert.Equal(t, 2, uf.sizeOf(0))
	assert.False(t, uf.same(0, 2))
}

func TestBuildEmptyInput(t *testing.T) {
	result := NewBuilder(defaultParams(), tagSimilarity).Build(nil)
	assert.Empty(t, result.Groups)
	assert.Empty(t, result.Singletons)
	assert.Zero(t, result.Passes)
}
