package model

// Entity is the lightweight per-address metadata kept for one artifact in one
// version. The NameHash is a disambiguation hint only and never contributes
// to identity; zero means no name is known.
type Entity struct {
	Size     uint64
	NameHash uint64
}

// EntityTable maps absolute address to entity metadata for one category of
// one version.
type EntityTable map[uint64]Entity

// VersionNode holds everything known about one release: its base load
// address, the per-category entity tables, and the resolved ID table once an
// input bin existed for it or propagation has completed.
//
// Nodes are built once per run and are immutable afterwards, except for IDs,
// which is written exactly once when the version is resolved.
type VersionNode struct {
	Version     Version
	BaseAddress uint64
	Entities    [NumCategories]EntityTable

	// IDs is nil until the version is an anchor or has been resolved.
	IDs *IDTable
}

// NewVersionNode creates a node with empty entity tables.
func NewVersionNode(version Version, baseAddress uint64) *VersionNode {
	n := &VersionNode{Version: version, BaseAddress: baseAddress}
	for i := range n.Entities {
		n.Entities[i] = make(EntityTable)
	}
	return n
}

// AddEntity records an entity at an absolute address.
func (n *VersionNode) AddEntity(c Category, address uint64, e Entity) {
	n.Entities[c][address] = e
}

// HasEntity reports whether an entity exists at the given address.
func (n *VersionNode) HasEntity(c Category, address uint64) bool {
	_, ok := n.Entities[c][address]
	return ok
}

// EntityCount returns the total number of entities across all categories.
func (n *VersionNode) EntityCount() int {
	total := 0
	for _, t := range n.Entities {
		total += len(t)
	}
	return total
}

// SortedAddresses returns the addresses of one category in ascending order.
// Resolution and bootstrap iterate entities in this order so that output is a
// fixed function of input content.
func (n *VersionNode) SortedAddresses(c Category) []uint64 {
	addrs := make([]uint64, 0, len(n.Entities[c]))
	for addr := range n.Entities[c] {
		addrs = append(addrs, addr)
	}
	sortUint64s(addrs)
	return addrs
}
