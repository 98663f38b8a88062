// Package cluster groups near-duplicate keywords by iterative greedy merging
// over precomputed embeddings.
package cluster

// unionFind is a disjoint-set forest with path compression.  Union keeps the
// first argument's root as the merged root, so a cluster's anchor member is
// stable across merges.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// find returns the root of x, compressing the path along the way.
func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union merges the set containing b into the set containing a and returns the
// surviving root (a's root). No-op when both are already in the same set.
func (uf *unionFind) union(a, b int) int {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return ra
}

// sizeOf returns the cardinality of x's set.
func (uf *unionFind) sizeOf(x int) int {
	return uf.size[uf.find(x)]
}

// same reports whether a and b share a root.
func (uf *unionFind) same(a, b int) bool {
	return uf.find(a) == uf.find(b)
}
