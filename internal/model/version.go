package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Version identifies one release by its dotted version string. Versions with
// fewer than four components are padded with zeros, so "1.2.3" and "1.2.3.0"
// name the same release. Comparison is numeric per component, left to right.
type Version [4]uint16

// ParseVersion parses a dotted version string with one to four numeric
// components.
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return v, fmt.Errorf("invalid version %q: expected 1 to 4 dotted components", s)
	}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return v, fmt.Errorf("invalid version %q: component %q is not a 16-bit number", s, part)
		}
		v[i] = uint16(n)
	}
	return v, nil
}

// String returns the canonical four-component dotted form, e.g. "1.2.3.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// Compare orders versions numerically per component. It returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	for i := range v {
		switch {
		case v[i] < o[i]:
			return -1
		case v[i] > o[i]:
			return 1
		}
	}
	return 0
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// BinFileName returns the version-bin file name for this version,
// e.g. "version-1-2-3-0.bin".
func (v Version) BinFileName() string {
	return fmt.Sprintf("version-%d-%d-%d-%d.bin", v[0], v[1], v[2], v[3])
}

// SortVersions sorts versions ascending in place and returns the slice.
func SortVersions(versions []Version) []Version {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})
	return versions
}
