// Package graph assembles ingested versions, anchor ID tables and diff edges
// into the version graph the propagation engine walks.
package graph

import "github.com/binforge/addrbin/internal/model"

// Edge connects two version nodes by their indexes in the graph's node slice
// and carries the diff report's match records. Traversal treats edges as
// undirected; the match records keep their report orientation.
type Edge struct {
	Left    int
	Right   int
	Matches []model.MatchRecord
}

// Other returns the index of the endpoint opposite to node.
func (e *Edge) Other(node int) int {
	if e.Left == node {
		return e.Right
	}
	return e.Left
}

// Graph is the full version graph for one run. Nodes are held in a slice
// sorted by version and addressed by index; adjacency is index-based so that
// cycles among versions need no embedded references.
type Graph struct {
	nodes     []*model.VersionNode
	index     map[model.Version]int
	edges     []*Edge
	adjacency [][]int // node index -> indexes into edges
}

// Nodes returns all version nodes sorted ascending by version.
func (g *Graph) Nodes() []*model.VersionNode {
	return g.nodes
}

// Node returns the node for a version, or nil if the version is unknown.
func (g *Graph) Node(v model.Version) *model.VersionNode {
	i, ok := g.index[v]
	if !ok {
		return nil
	}
	return g.nodes[i]
}

// NodeIndex returns the slice index of a version and whether it exists.
func (g *Graph) NodeIndex(v model.Version) (int, bool) {
	i, ok := g.index[v]
	return i, ok
}

// NodeAt returns the node at a slice index.
func (g *Graph) NodeAt(i int) *model.VersionNode {
	return g.nodes[i]
}

// EdgesOf returns the edges incident to the node at index i.
func (g *Graph) EdgesOf(i int) []*Edge {
	edges := make([]*Edge, 0, len(g.adjacency[i]))
	for _, ei := range g.adjacency[i] {
		edges = append(edges, g.edges[ei])
	}
	return edges
}

// NodeCount returns the number of versions in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of diff edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Anchors returns the versions that already carry a resolved ID table,
// sorted ascending.
func (g *Graph) Anchors() []model.Version {
	var anchors []model.Version
	for _, n := range g.nodes {
		if n.IDs != nil {
			anchors = append(anchors, n.Version)
		}
	}
	return anchors
}
