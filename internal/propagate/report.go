package propagate

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/binforge/addrbin/internal/model"
)

// Status is the per-version outcome of a resolution run.
type Status uint8

const (
	// StatusAnchor means the version already carried an ID table (an input
	// bin existed); nothing was resolved and no output is produced.
	StatusAnchor Status = iota
	// StatusResolved means the version received an ID table this run.
	StatusResolved
	// StatusUnreachable means no chain of diff reports connects the version
	// to any resolved version; no output is produced.
	StatusUnreachable
	// StatusFailed means resolution of this version hit an internal
	// invariant violation; only this version's output is aborted.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAnchor:
		return "anchor"
	case StatusResolved:
		return "resolved"
	case StatusUnreachable:
		return "unreachable"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason classifies why an entity could not inherit an ID.
type Reason string

const (
	// ReasonMultiplicity marks one-to-many or many-to-one match cardinality.
	ReasonMultiplicity Reason = "ambiguous-multiplicity"
	// ReasonAmbiguousKind marks a match the diff tool itself flagged ambiguous.
	ReasonAmbiguousKind Reason = "ambiguous-kind"
	// ReasonLowConfidence marks a modified match below the confidence threshold.
	ReasonLowConfidence Reason = "low-confidence"
	// ReasonConflict marks disagreeing inherited IDs from different neighbors.
	ReasonConflict Reason = "conflicting-neighbors"
	// ReasonInheritCollision marks an inherited ID already claimed by a lower
	// address of the same version.
	ReasonInheritCollision Reason = "duplicate-inherited-id"
)

// Diagnostic records one entity that received a fresh ID because the match
// evidence for it was ambiguous or contradictory. Diagnostics are never
// fatal; they exist for human review.
type Diagnostic struct {
	Version  model.Version
	Category model.Category
	Address  uint64
	Reason   Reason
	Detail   string
}

// VersionStatus is the resolution outcome and counters for one version.
type VersionStatus struct {
	Status    Status
	Inherited int
	Fresh     int
	Err       error // set when Status is StatusFailed
}

// Report is the result of one resolution run: the outcome of every version
// in the graph, in ascending version order, plus all ambiguity diagnostics.
type Report struct {
	Statuses    *orderedmap.OrderedMap[model.Version, *VersionStatus]
	Diagnostics []Diagnostic
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Statuses: orderedmap.NewOrderedMap[model.Version, *VersionStatus](),
	}
}

// CountByStatus returns how many versions finished with the given status.
func (r *Report) CountByStatus(s Status) int {
	count := 0
	for el := r.Statuses.Front(); el != nil; el = el.Next() {
		if el.Value.Status == s {
			count++
		}
	}
	return count
}

// ResolvedVersions returns the versions resolved this run, in report order.
func (r *Report) ResolvedVersions() []model.Version {
	var versions []model.Version
	for el := r.Statuses.Front(); el != nil; el = el.Next() {
		if el.Value.Status == StatusResolved {
			versions = append(versions, el.Key)
		}
	}
	return versions
}
