package model

import "fmt"

// MatchKind classifies a diff match. The set is closed: the resolution policy
// in the propagation engine depends exhaustively on these three values.
type MatchKind uint8

const (
	// MatchIdentical means the diff tool found byte-identical entities.
	MatchIdentical MatchKind = iota
	// MatchModified means the entities differ in bytes but the diff tool
	// considers them the same logical entity (code motion, recompilation).
	MatchModified
	// MatchAmbiguous means the diff tool itself was unsure. Ambiguous
	// matches never transfer identity.
	MatchAmbiguous
)

// String returns the lowercase report token for the kind.
func (k MatchKind) String() string {
	switch k {
	case MatchIdentical:
		return "identical"
	case MatchModified:
		return "modified"
	case MatchAmbiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseMatchKind converts a diff-report token into a MatchKind.
func ParseMatchKind(s string) (MatchKind, error) {
	switch s {
	case "identical":
		return MatchIdentical, nil
	case "modified":
		return MatchModified, nil
	case "ambiguous":
		return MatchAmbiguous, nil
	default:
		return 0, fmt.Errorf("unknown match kind %q", s)
	}
}

// MatchRecord is one match between an entity in the left version and an
// entity in the right version of a diff report. Addresses are absolute in
// their respective versions' address spaces and keep the report's declared
// left/right orientation.
type MatchRecord struct {
	Category     Category
	LeftAddress  uint64
	RightAddress uint64
	Confidence   float64
	Kind         MatchKind
}

// DiffEdge is the full match list of one diff report between two versions.
// Traversal treats the edge as undirected; the records keep their original
// orientation.
type DiffEdge struct {
	Left    Version
	Right   Version
	Matches []MatchRecord
}
