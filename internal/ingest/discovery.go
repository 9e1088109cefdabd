package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/binforge/addrbin/internal/model"
)

var (
	versionDirPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:\.(\d+))?$`)
	diffFilePattern   = regexp.MustCompile(`^(\d+(?:\.\d+){1,3})_(\d+(?:\.\d+){1,3})\.txt(?:\.gz)?$`)
	binFilePattern    = regexp.MustCompile(`^version-(\d+)-(\d+)-(\d+)-(\d+)\.bin$`)
)

// DiffFile is one discovered diff report with the version pair declared by
// its file name.
type DiffFile struct {
	Path  string
	Left  model.Version
	Right model.Version
}

// Discovered is the inventory of one root directory: per-version export
// directories, diff reports, and existing version bins.
type Discovered struct {
	ExportDirs map[model.Version]string
	DiffFiles  []DiffFile
	BinFiles   map[model.Version]string

	// Warnings lists inputs that were recognized but skipped, such as a
	// diff report mapping a version to itself.
	Warnings []string
}

// Versions returns the discovered export versions sorted ascending.
func (d *Discovered) Versions() []model.Version {
	versions := make([]model.Version, 0, len(d.ExportDirs))
	for v := range d.ExportDirs {
		versions = append(versions, v)
	}
	return model.SortVersions(versions)
}

// Discover walks the root directory and catalogs every recognized input. A
// subdirectory named like "1.2.3" or "1.2.3.4" that contains a base-address
// dump is a version export; files named "A.B.C_D.E.F.txt" are diff reports;
// files named "version-A-B-C-D.bin" are existing bins. Everything else is
// ignored.
func Discover(root string) (*Discovered, error) {
	d := &Discovered{
		ExportDirs: make(map[model.Version]string),
		BinFiles:   make(map[model.Version]string),
	}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error while walking %s: %w", root, err)
		}
		name := entry.Name()
		if entry.IsDir() {
			if versionDirPattern.MatchString(name) && findInput(path, baseFileName) != "" {
				version, err := model.ParseVersion(name)
				if err != nil {
					return fmt.Errorf("failed to parse version from directory %s: %w", path, err)
				}
				if prev, ok := d.ExportDirs[version]; ok {
					return fmt.Errorf("version %s exported twice: %s and %s", version, prev, path)
				}
				d.ExportDirs[version] = path
			}
			return nil
		}

		if m := diffFilePattern.FindStringSubmatch(name); m != nil {
			left, err := model.ParseVersion(m[1])
			if err != nil {
				return fmt.Errorf("failed to parse left version from file %s: %w", path, err)
			}
			right, err := model.ParseVersion(m[2])
			if err != nil {
				return fmt.Errorf("failed to parse right version from file %s: %w", path, err)
			}
			if left == right {
				d.Warnings = append(d.Warnings, fmt.Sprintf("diff report %s maps a version to itself, skipped", path))
				return nil
			}
			d.DiffFiles = append(d.DiffFiles, DiffFile{Path: path, Left: left, Right: right})
			return nil
		}

		if m := binFilePattern.FindStringSubmatch(name); m != nil {
			version, err := model.ParseVersion(m[1] + "." + m[2] + "." + m[3] + "." + m[4])
			if err != nil {
				return fmt.Errorf("failed to parse version from bin file %s: %w", path, err)
			}
			if prev, ok := d.BinFiles[version]; ok {
				return fmt.Errorf("version %s has two bins: %s and %s", version, prev, path)
			}
			d.BinFiles[version] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir order is lexical by path; sorting by version pair keeps
	// downstream processing a fixed function of content, not layout.
	sort.Slice(d.DiffFiles, func(i, j int) bool {
		if d.DiffFiles[i].Left != d.DiffFiles[j].Left {
			return d.DiffFiles[i].Left.Less(d.DiffFiles[j].Left)
		}
		if d.DiffFiles[i].Right != d.DiffFiles[j].Right {
			return d.DiffFiles[i].Right.Less(d.DiffFiles[j].Right)
		}
		return d.DiffFiles[i].Path < d.DiffFiles[j].Path
	})

	return d, nil
}
