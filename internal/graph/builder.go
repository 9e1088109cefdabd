package graph

import (
	"sort"

	"github.com/binforge/addrbin/internal/model"
)

// Build assembles version nodes and diff edges into a single graph.
//
// It rejects duplicate version declarations and edges whose endpoints are not
// both present. Reachability and ambiguity are not validated here; the
// propagation engine handles both.
func Build(nodes []*model.VersionNode, edges []*model.DiffEdge) (*Graph, error) {
	sorted := make([]*model.VersionNode, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version.Less(sorted[j].Version)
	})

	g := &Graph{
		nodes: sorted,
		index: make(map[model.Version]int, len(sorted)),
	}
	for i, n := range sorted {
		if prev, ok := g.index[n.Version]; ok {
			return nil, &DuplicateVersionError{
				Version: n.Version,
				BaseA:   g.nodes[prev].BaseAddress,
				BaseB:   n.BaseAddress,
			}
		}
		g.index[n.Version] = i
	}

	g.adjacency = make([][]int, len(sorted))
	for _, e := range edges {
		li, ok := g.index[e.Left]
		if !ok {
			return nil, &DanglingEdgeError{Left: e.Left, Right: e.Right, Missing: e.Left}
		}
		ri, ok := g.index[e.Right]
		if !ok {
			return nil, &DanglingEdgeError{Left: e.Left, Right: e.Right, Missing: e.Right}
		}
		ei := len(g.edges)
		g.edges = append(g.edges, &Edge{Left: li, Right: ri, Matches: e.Matches})
		g.adjacency[li] = append(g.adjacency[li], ei)
		g.adjacency[ri] = append(g.adjacency[ri], ei)
	}

	return g, nil
}
