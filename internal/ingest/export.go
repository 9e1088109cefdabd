package ingest

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/binforge/addrbin/internal/model"
)

// Export dump file names inside one version directory. Each may carry a .gz
// suffix. The base dump is mandatory; category dumps are optional and absent
// ones yield empty entity tables.
const (
	baseFileName     = "idaexport_base.txt"
	functionFileName = "idaexport_func.txt"
	globalFileName   = "idaexport_global.txt"
	vtableFileName   = "idaexport_vtable.txt"
	stringFileName   = "idaexport_string.txt"
	nameFileName     = "idaexport_name.txt"
)

// exportFormatVersion is the only dump header revision we accept.
const exportFormatVersion = "1"

var (
	headerPattern   = regexp.MustCompile(`^version\t(\d+)$`)
	basePattern     = regexp.MustCompile(`^baseaddress\t([0-9A-Fa-f]+)$`)
	functionPattern = regexp.MustCompile(`^func\t([0-9A-Fa-f]+)\t([0-9A-Fa-f]+)`)
	globalPattern   = regexp.MustCompile(`^global\t([0-9A-Fa-f]+)(?:\t|$)`)
	vtablePattern   = regexp.MustCompile(`^vtable\t([0-9A-Fa-f]+)\t(\d+)`)
	stringPattern   = regexp.MustCompile(`^string\t([0-9A-Fa-f]+)\t(\d+)`)
	namePattern     = regexp.MustCompile(`^name\t([0-9A-Fa-f]+)\t(\S+)`)
)

// ReadExports parses one version's export directory into a VersionNode with
// per-category entity tables keyed by absolute address.
func ReadExports(dir string, version model.Version) (*model.VersionNode, error) {
	base, err := readBase(dir)
	if err != nil {
		return nil, err
	}
	node := model.NewVersionNode(version, base)

	categoryFiles := []struct {
		name string
		cat  model.Category
	}{
		{functionFileName, model.CategoryFunction},
		{globalFileName, model.CategoryGlobal},
		{vtableFileName, model.CategoryVtable},
		{stringFileName, model.CategoryString},
	}
	for _, cf := range categoryFiles {
		path := findInput(dir, cf.name)
		if path == "" {
			continue
		}
		r, err := openInput(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = parseCategoryDump(r, node, cf.cat)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if path := findInput(dir, nameFileName); path != "" {
		r, err := openInput(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = parseNameDump(r, node)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return node, nil
}

// readBase parses the mandatory base-address dump.
func readBase(dir string) (uint64, error) {
	path := findInput(dir, baseFileName)
	if path == "" {
		return 0, fmt.Errorf("missing %s in %s", baseFileName, dir)
	}
	r, err := openInput(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	scanner := newDumpScanner(r)
	if err := readDumpHeader(scanner); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if !scanner.Scan() {
		return 0, fmt.Errorf("failed to parse %s: missing base address line", path)
	}
	m := basePattern.FindStringSubmatch(scanner.Text())
	if m == nil {
		return 0, fmt.Errorf("failed to parse %s: malformed base address line %q", path, scanner.Text())
	}
	base, err := strconv.ParseUint(m[1], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return base, nil
}

// parseCategoryDump reads one category's rows into the node's entity table.
// Addresses are absolute, must not precede the base address, and must stay
// within a 32-bit offset of it.
func parseCategoryDump(r io.Reader, node *model.VersionNode, cat model.Category) error {
	scanner := newDumpScanner(r)
	if err := readDumpHeader(scanner); err != nil {
		return err
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		addr, size, err := parseCategoryRow(line, cat)
		if err != nil {
			return err
		}
		if addr < node.BaseAddress {
			return fmt.Errorf("address 0x%X is below base address 0x%X", addr, node.BaseAddress)
		}
		if addr-node.BaseAddress > math.MaxUint32 {
			return fmt.Errorf("address 0x%X is more than 32 bits beyond base address 0x%X", addr, node.BaseAddress)
		}
		node.AddEntity(cat, addr, model.Entity{Size: size})
	}
	return scanner.Err()
}

func parseCategoryRow(line string, cat model.Category) (addr, size uint64, err error) {
	parseHex := func(s string) (uint64, error) { return strconv.ParseUint(s, 16, 64) }
	switch cat {
	case model.CategoryFunction:
		m := functionPattern.FindStringSubmatch(line)
		if m == nil {
			return 0, 0, fmt.Errorf("malformed func row %q", line)
		}
		start, err := parseHex(m[1])
		if err != nil {
			return 0, 0, err
		}
		end, err := parseHex(m[2])
		if err != nil {
			return 0, 0, err
		}
		if end < start {
			return 0, 0, fmt.Errorf("func row %q ends before it starts", line)
		}
		return start, end - start, nil
	case model.CategoryGlobal:
		m := globalPattern.FindStringSubmatch(line)
		if m == nil {
			return 0, 0, fmt.Errorf("malformed global row %q", line)
		}
		addr, err := parseHex(m[1])
		return addr, 0, err
	case model.CategoryVtable:
		m := vtablePattern.FindStringSubmatch(line)
		if m == nil {
			return 0, 0, fmt.Errorf("malformed vtable row %q", line)
		}
		addr, err := parseHex(m[1])
		if err != nil {
			return 0, 0, err
		}
		entries, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return 0, 0, err
		}
		return addr, entries * 8, nil
	case model.CategoryString:
		m := stringPattern.FindStringSubmatch(line)
		if m == nil {
			return 0, 0, fmt.Errorf("malformed string row %q", line)
		}
		addr, err := parseHex(m[1])
		if err != nil {
			return 0, 0, err
		}
		length, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return 0, 0, err
		}
		return addr, length, nil
	default:
		return 0, 0, fmt.Errorf("no dump grammar for category %s", cat)
	}
}

// parseNameDump attaches name hashes to already-ingested entities. Names are
// a disambiguation hint only; rows for unknown addresses are dropped.
func parseNameDump(r io.Reader, node *model.VersionNode) error {
	scanner := newDumpScanner(r)
	if err := readDumpHeader(scanner); err != nil {
		return err
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		m := namePattern.FindStringSubmatch(line)
		if m == nil {
			return fmt.Errorf("malformed name row %q", line)
		}
		addr, err := strconv.ParseUint(m[1], 16, 64)
		if err != nil {
			return err
		}
		hash := hashName(m[2])
		for _, cat := range model.AllCategories {
			if e, ok := node.Entities[cat][addr]; ok {
				e.NameHash = hash
				node.Entities[cat][addr] = e
			}
		}
	}
	return scanner.Err()
}

// hashName derives a 64-bit hint from a mangled symbol name.
func hashName(name string) uint64 {
	h := fnv.New64a()
	io.WriteString(h, name)
	return h.Sum64()
}

// readDumpHeader consumes and validates the "version\t1" header line every
// dump starts with.
func readDumpHeader(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		return fmt.Errorf("missing dump header")
	}
	m := headerPattern.FindStringSubmatch(scanner.Text())
	if m == nil {
		return fmt.Errorf("malformed dump header %q", scanner.Text())
	}
	if m[1] != exportFormatVersion {
		return fmt.Errorf("unsupported dump version %s", m[1])
	}
	return nil
}

// newDumpScanner builds a line scanner sized for large export dumps.
func newDumpScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}
