package graph

import "github.com/binforge/addrbin/internal/model"

// Levels computes the breadth-first frontier levels reachable from the given
// start versions. Level 0 is the start set; level k holds every version first
// reachable through k edges. Versions inside a level are sorted ascending, so
// the result is a fixed function of the graph's content.
//
// Unknown start versions are ignored. Versions never reached are returned
// separately, sorted ascending.
func (g *Graph) Levels(start []model.Version) (levels [][]model.Version, unreachable []model.Version) {
	visited := make(map[int]bool, len(g.nodes))

	var current []int
	for _, v := range start {
		if i, ok := g.index[v]; ok && !visited[i] {
			visited[i] = true
			current = append(current, i)
		}
	}

	for len(current) > 0 {
		level := make([]model.Version, 0, len(current))
		for _, i := range current {
			level = append(level, g.nodes[i].Version)
		}
		levels = append(levels, model.SortVersions(level))

		var next []int
		for _, i := range current {
			for _, e := range g.EdgesOf(i) {
				j := e.Other(i)
				if !visited[j] {
					visited[j] = true
					next = append(next, j)
				}
			}
		}
		current = next
	}

	for i, n := range g.nodes {
		if !visited[i] {
			unreachable = append(unreachable, n.Version)
		}
	}
	return levels, model.SortVersions(unreachable)
}
