// Package model defines the shared data contracts for addrbin: entity
// categories, version identifiers, match records and per-version ID tables.
package model

import "fmt"

// Category identifies the kind of binary-analysis artifact an entity is.
// Each category has its own independent ID namespace.
type Category uint8

const (
	CategoryFunction Category = iota
	CategoryGlobal
	CategoryVtable
	CategoryString
)

// NumCategories is the number of defined categories. Arrays indexed by
// Category use this as their length; the wire format writes categories in
// declaration order.
const NumCategories = 4

// AllCategories lists every category in wire order.
var AllCategories = [NumCategories]Category{
	CategoryFunction,
	CategoryGlobal,
	CategoryVtable,
	CategoryString,
}

// String returns the lowercase name used in export dumps and diff reports.
func (c Category) String() string {
	switch c {
	case CategoryFunction:
		return "func"
	case CategoryGlobal:
		return "global"
	case CategoryVtable:
		return "vtable"
	case CategoryString:
		return "string"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// ParseCategory converts a dump/report token into a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "func":
		return CategoryFunction, nil
	case "global":
		return CategoryGlobal, nil
	case "vtable":
		return CategoryVtable, nil
	case "string":
		return CategoryString, nil
	default:
		return 0, fmt.Errorf("unknown entity category %q", s)
	}
}
