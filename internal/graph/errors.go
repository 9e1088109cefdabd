package graph

import (
	"fmt"

	"github.com/binforge/addrbin/internal/model"
)

// DuplicateVersionError reports two inputs declaring the same version. The
// inputs are self-contradictory, so graph construction fails the whole run.
type DuplicateVersionError struct {
	Version model.Version
	BaseA   uint64
	BaseB   uint64
}

func (e *DuplicateVersionError) Error() string {
	if e.BaseA != e.BaseB {
		return fmt.Sprintf("version %s declared twice with conflicting base addresses 0x%X and 0x%X",
			e.Version, e.BaseA, e.BaseB)
	}
	return fmt.Sprintf("version %s declared twice (base address 0x%X)", e.Version, e.BaseA)
}

// DanglingEdgeError reports a diff edge whose endpoint has no ingested
// version. Like duplicates, this fails the whole run.
type DanglingEdgeError struct {
	Left    model.Version
	Right   model.Version
	Missing model.Version
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("diff edge %s -> %s references version %s, which has no export data",
		e.Left, e.Right, e.Missing)
}
