package propagate

import (
	"testing"

	"github.com/binforge/addrbin/internal/model"
)

func TestCounterSeed(t *testing.T) {
	a := model.NewIDTable()
	_ = a.Assign(model.CategoryFunction, 0x10, 7)
	_ = a.Assign(model.CategoryGlobal, 0x20, 2)
	b := model.NewIDTable()
	_ = b.Assign(model.CategoryFunction, 0x30, 3)

	c := NewCounter()
	c.Seed(a, b, nil)

	if got := c.Peek(model.CategoryFunction); got != 8 {
		t.Errorf("func counter = %d, want 8", got)
	}
	if got := c.Peek(model.CategoryGlobal); got != 3 {
		t.Errorf("global counter = %d, want 3", got)
	}
	if got := c.Peek(model.CategoryVtable); got != 0 {
		t.Errorf("vtable counter = %d, want 0", got)
	}

	// Seeding with a lower maximum never moves a counter backwards.
	c.Seed(b)
	if got := c.Peek(model.CategoryFunction); got != 8 {
		t.Errorf("func counter after reseed = %d, want 8", got)
	}
}

func TestCounterReserve(t *testing.T) {
	c := NewCounter()
	if start := c.Reserve(model.CategoryString, 3); start != 0 {
		t.Errorf("first range starts at %d, want 0", start)
	}
	if start := c.Reserve(model.CategoryString, 2); start != 3 {
		t.Errorf("second range starts at %d, want 3", start)
	}
	if start := c.Reserve(model.CategoryString, 0); start != 5 {
		t.Errorf("empty range starts at %d, want 5", start)
	}
	if got := c.Peek(model.CategoryFunction); got != 0 {
		t.Errorf("unrelated category moved to %d", got)
	}
}
