package cluster

// ---
// Inputs
// ---

// Member is one keyword entering the clustering pass.  Volume and Opportunity
// are zero when the underlying metric is unknown.
type Member struct {
	Text        string
	Volume      int
	Opportunity int
	Embedding   []float64
}

// SimilarityFunc scores two embeddings in [0,1].
type SimilarityFunc func(a, b []float64) float64

// Params bounds the merge loop.
type Params struct {
	// Threshold is the minimum anchor-to-anchor similarity for a merge.
	Threshold float64
	// MaxClusterSize caps cluster cardinality; merges that would exceed it
	// are skipped.
	MaxClusterSize int
	// MaxPasses caps the number of full merge passes when the partition
	// does not converge on its own.
	MaxPasses int
}

// ---
// Outputs
// ---

// Group is a cluster with at least two members.  Members preserves input
// order; Representative is always one of Members; Siblings lists the other
// members' texts in order.
type Group struct {
	ID             int
	Members        []Member
	Representative Member
	Siblings       []string
}

// Result is the full clustering outcome.  Singletons pass through ungrouped.
type Result struct {
	Groups     []Group
	Singletons []Member
	// Passes is the number of merge passes executed before convergence or
	// the cap, whichever came first.
	Passes int
}

// ---
// Builder
// ---

// Builder runs the iterative greedy pairwise merge.  Two clusters merge when
// the similarity between their anchor members (the earliest input in each)
// meets the threshold; each pass rescans all pairs, and the loop stops after
// a pass with no merges or after MaxPasses.
type Builder struct {
	params Params
	simFn  SimilarityFunc
}

// NewBuilder constructs a Builder with the given bounds and similarity
// function.
func NewBuilder(params Params, simFn SimilarityFunc) *Builder {
	return &Builder{params: params, simFn: simFn}
}

// Build partitions members into groups and singletons.  Deterministic given
// identical inputs; input order only affects which member anchors a cluster,
// not the final partition for transitively-similar sets.
func (b *Builder) Build(members []Member) Result {
	n := len(members)
	if n == 0 {
		return Result{}
	}

	uf := newUnionFind(n)
	// clusterMembers[root] holds member indexes in merge order; the first
	// entry is the cluster's anchor.
	clusterMembers := make(map[int][]int, n)
	active := make([]int, n)
	for i := 0; i < n; i++ {
		clusterMembers[i] = []int{i}
		active[i] = i
	}

	passes := 0
	for passes < b.params.MaxPasses {
		passes++
		merged := false

		for ii := 0; ii < len(active); ii++ {
			i := active[ii]
			for jj := ii + 1; jj < len(active); {
				j := active[jj]
				if b.canMerge(uf, members, i, j) {
					root := uf.union(i, j)
					clusterMembers[root] = append(clusterMembers[root], clusterMembers[j]...)
					delete(clusterMembers, j)
					// Drop j from the active list and keep scanning at the
					// same position.
					active = append(active[:jj], active[jj+1:]...)
					merged = true
				} else {
					jj++
				}
			}
		}

		if !merged {
			break
		}
	}

	return b.collect(members, clusterMembers, active, passes)
}

// canMerge applies the same-set guard, the size cap and the
// anchor-similarity threshold.
func (b *Builder) canMerge(uf *unionFind, members []Member, i, j int) bool {
	if uf.same(i, j) {
		return false
	}
	if uf.sizeOf(i)+uf.sizeOf(j) > b.params.MaxClusterSize {
		return false
	}
	sim := b.simFn(members[i].Embedding, members[j].Embedding)
	return sim >= b.params.Threshold
}

// collect turns the final partition into Groups and Singletons, assigning
// sequential ids to multi-member clusters and electing representatives.
func (b *Builder) collect(members []Member, clusterMembers map[int][]int, active []int, passes int) Result {
	result := Result{Passes: passes}

	nextID := 1
	for _, root := range active {
		idxs := clusterMembers[root]
		if len(idxs) < 2 {
			result.Singletons = append(result.Singletons, members[idxs[0]])
			continue
		}

		group := Group{ID: nextID, Members: make([]Member, 0, len(idxs))}
		nextID++
		for _, idx := range idxs {
			group.Members = append(group.Members, members[idx])
		}

		repIdx := electRepresentative(group.Members)
		group.Representative = group.Members[repIdx]
		for i, m := range group.Members {
			if i != repIdx {
				group.Siblings = append(group.Siblings, m.Text)
			}
		}
		result.Groups = append(result.Groups, group)
	}

	return result
}

// electRepresentative returns the index of the member maximizing
// volume*opportunity minus a small length penalty; the penalty breaks metric
// ties in favor of shorter text, and exact ties keep the earliest member.
func electRepresentative(members []Member) int {
	best := 0
	bestScore := representativeScore(members[0])
	for i := 1; i < len(members); i++ {
		if score := representativeScore(members[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func representativeScore(m Member) float64 {
	return float64(m.Volume)*float64(m.Opportunity) - 0.01*float64(len(m.Text))
}
