package model

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"1.2.3", Version{1, 2, 3, 0}},
		{"1.2.3.4", Version{1, 2, 3, 4}},
		{"10", Version{10, 0, 0, 0}},
		{"0.0.0.0", Version{}},
		{"1.10.163.0", Version{1, 10, 163, 0}},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.input)
		if err != nil {
			t.Errorf("ParseVersion(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseVersion_Invalid(t *testing.T) {
	for _, input := range []string{"", "1.2.3.4.5", "1.a.3", "1..3", "70000", "-1.2"} {
		if _, err := ParseVersion(input); err == nil {
			t.Errorf("ParseVersion(%q) should have failed", input)
		}
	}
}

func TestVersionString(t *testing.T) {
	v, err := ParseVersion("1.6.1130")
	if err != nil {
		t.Fatalf("ParseVersion failed: %v", err)
	}
	if got := v.String(); got != "1.6.1130.0" {
		t.Errorf("String() = %q, want %q", got, "1.6.1130.0")
	}
	if got := v.BinFileName(); got != "version-1-6-1130-0.bin" {
		t.Errorf("BinFileName() = %q, want %q", got, "version-1-6-1130-0.bin")
	}
}

func TestVersionCompare(t *testing.T) {
	// Numeric per-component ordering: 1.9 precedes 1.10.
	nine := Version{1, 9, 0, 0}
	ten := Version{1, 10, 0, 0}
	if !nine.Less(ten) {
		t.Error("1.9 should order before 1.10")
	}
	if ten.Less(nine) {
		t.Error("1.10 should not order before 1.9")
	}
	if nine.Compare(nine) != 0 {
		t.Error("a version should compare equal to itself")
	}
}

func TestSortVersions(t *testing.T) {
	versions := []Version{
		{2, 0, 0, 0},
		{1, 10, 0, 0},
		{1, 9, 0, 0},
		{1, 9, 1, 0},
	}
	SortVersions(versions)
	want := []Version{
		{1, 9, 0, 0},
		{1, 9, 1, 0},
		{1, 10, 0, 0},
		{2, 0, 0, 0},
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, versions[i], want[i])
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, cat := range AllCategories {
		parsed, err := ParseCategory(cat.String())
		if err != nil {
			t.Errorf("ParseCategory(%q) failed: %v", cat.String(), err)
		}
		if parsed != cat {
			t.Errorf("ParseCategory(%q) = %v, want %v", cat.String(), parsed, cat)
		}
	}
	if _, err := ParseCategory("segment"); err == nil {
		t.Error("ParseCategory should reject unknown categories")
	}
}

func TestParseMatchKind(t *testing.T) {
	for _, kind := range []MatchKind{MatchIdentical, MatchModified, MatchAmbiguous} {
		parsed, err := ParseMatchKind(kind.String())
		if err != nil {
			t.Errorf("ParseMatchKind(%q) failed: %v", kind.String(), err)
		}
		if parsed != kind {
			t.Errorf("ParseMatchKind(%q) = %v, want %v", kind.String(), parsed, kind)
		}
	}
	if _, err := ParseMatchKind("perfect"); err == nil {
		t.Error("ParseMatchKind should reject unknown kinds")
	}
}
