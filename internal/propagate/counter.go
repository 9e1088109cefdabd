// Package propagate implements the identifier-propagation engine: it walks
// the version graph outward from anchor versions and assigns or inherits a
// stable ID for every entity of every reachable version.
package propagate

import "github.com/binforge/addrbin/internal/model"

// Counter is the per-category next-free-ID source for one run. It is seeded
// from the maximum ID observed across all anchor tables, only ever moves
// forward, and is discarded at process exit; the next run reseeds from
// whatever bins then exist on disk.
//
// Fresh IDs are handed out as contiguous ranges reserved on the coordinating
// goroutine between resolution waves, so worker interleaving can never
// influence which entity gets which ID. No atomics are needed.
type Counter struct {
	next [model.NumCategories]uint32
}

// NewCounter creates a counter starting at zero for every category.
func NewCounter() *Counter {
	return &Counter{}
}

// Seed raises each category's next ID above the maximum found in the given
// tables. Seeding never lowers a counter.
func (c *Counter) Seed(tables ...*model.IDTable) {
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, cat := range model.AllCategories {
			if max, ok := t.MaxID(cat); ok && max+1 > c.next[cat] {
				c.next[cat] = max + 1
			}
		}
	}
}

// Reserve allocates a contiguous range of n fresh IDs for a category and
// returns the first ID of the range.
func (c *Counter) Reserve(cat model.Category, n int) uint32 {
	start := c.next[cat]
	c.next[cat] += uint32(n)
	return start
}

// Peek returns the next ID a category would mint, without reserving it.
func (c *Counter) Peek(cat model.Category) uint32 {
	return c.next[cat]
}
