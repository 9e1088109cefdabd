package model

import (
	"fmt"
	"sort"
)

// IDPair is one (id, address) assignment within a category.
type IDPair struct {
	ID      uint32
	Address uint64
}

// IDTable is the resolved identifier table of one version: per category, a
// bidirectional mapping between absolute address and stable ID.
//
// The table enforces its core invariant on insertion: within a category no
// two addresses share an ID and no two IDs share an address.
type IDTable struct {
	byAddress [NumCategories]map[uint64]uint32
	byID      [NumCategories]map[uint32]uint64
}

// NewIDTable creates an empty table.
func NewIDTable() *IDTable {
	t := &IDTable{}
	for i := range t.byAddress {
		t.byAddress[i] = make(map[uint64]uint32)
		t.byID[i] = make(map[uint32]uint64)
	}
	return t
}

// Assign records an (address, id) pair. It fails if either side is already
// taken within the category.
func (t *IDTable) Assign(c Category, address uint64, id uint32) error {
	if existing, ok := t.byAddress[c][address]; ok {
		return fmt.Errorf("%s address 0x%X already holds id %d, cannot assign id %d", c, address, existing, id)
	}
	if existing, ok := t.byID[c][id]; ok {
		return fmt.Errorf("%s id %d already names address 0x%X, cannot assign address 0x%X", c, id, existing, address)
	}
	t.byAddress[c][address] = id
	t.byID[c][id] = address
	return nil
}

// Lookup returns the ID assigned to an address, if any.
func (t *IDTable) Lookup(c Category, address uint64) (uint32, bool) {
	id, ok := t.byAddress[c][address]
	return id, ok
}

// AddressOf returns the address an ID names, if any.
func (t *IDTable) AddressOf(c Category, id uint32) (uint64, bool) {
	addr, ok := t.byID[c][id]
	return addr, ok
}

// Len returns the number of assignments in a category.
func (t *IDTable) Len(c Category) int {
	return len(t.byAddress[c])
}

// Total returns the number of assignments across all categories.
func (t *IDTable) Total() int {
	total := 0
	for _, m := range t.byAddress {
		total += len(m)
	}
	return total
}

// Pairs returns a category's assignments sorted by ascending ID, the order
// the bin codec writes them in.
func (t *IDTable) Pairs(c Category) []IDPair {
	pairs := make([]IDPair, 0, len(t.byAddress[c]))
	for addr, id := range t.byAddress[c] {
		pairs = append(pairs, IDPair{ID: id, Address: addr})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	return pairs
}

// MaxID returns the largest ID present in a category and whether the
// category has any assignment at all.
func (t *IDTable) MaxID(c Category) (uint32, bool) {
	var max uint32
	found := false
	for id := range t.byID[c] {
		if !found || id > max {
			max = id
			found = true
		}
	}
	return max, found
}

// Equal reports whether two tables hold exactly the same assignments.
func (t *IDTable) Equal(o *IDTable) bool {
	for _, c := range AllCategories {
		if len(t.byAddress[c]) != len(o.byAddress[c]) {
			return false
		}
		for addr, id := range t.byAddress[c] {
			other, ok := o.byAddress[c][addr]
			if !ok || other != id {
				return false
			}
		}
	}
	return true
}

func sortUint64s(s []uint64) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
