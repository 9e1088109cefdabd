package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/binforge/addrbin/internal/model"
)

// preambleEndMarker terminates the free-text statistics preamble every diff
// report begins with. A blank line must follow it.
const preambleEndMarker = "Overall success:"

var matchRowPattern = regexp.MustCompile(`^(func|global|vtable|string)\t0x([0-9A-Fa-f]+)\t0x([0-9A-Fa-f]+)\t([0-9.]+)\t(identical|modified|ambiguous)$`)

// ReadDiff parses one diff report into a DiffEdge between the declared
// version pair. Match rows keep the report's left/right orientation and
// carry absolute addresses.
func ReadDiff(path string, left, right model.Version) (*model.DiffEdge, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	scanner := newDumpScanner(r)

	// Skip the statistics preamble.
	foundMarker := false
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), preambleEndMarker) {
			foundMarker = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error while reading %s: %w", path, err)
	}
	if !foundMarker {
		return nil, fmt.Errorf("reached end of %s before finding the end of the diff preamble", path)
	}
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "" {
		return nil, fmt.Errorf("expected a blank line after the diff preamble in %s", path)
	}

	edge := &model.DiffEdge{Left: left, Right: right}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		record, err := parseMatchRow(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		edge.Matches = append(edge.Matches, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error while reading %s: %w", path, err)
	}
	return edge, nil
}

func parseMatchRow(line string) (model.MatchRecord, error) {
	m := matchRowPattern.FindStringSubmatch(line)
	if m == nil {
		return model.MatchRecord{}, fmt.Errorf("malformed match row %q", line)
	}
	cat, err := model.ParseCategory(m[1])
	if err != nil {
		return model.MatchRecord{}, err
	}
	leftAddr, err := strconv.ParseUint(m[2], 16, 64)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("malformed left address in %q: %w", line, err)
	}
	rightAddr, err := strconv.ParseUint(m[3], 16, 64)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("malformed right address in %q: %w", line, err)
	}
	confidence, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("malformed confidence in %q: %w", line, err)
	}
	if confidence < 0 || confidence > 1 {
		return model.MatchRecord{}, fmt.Errorf("confidence %v out of range in %q", confidence, line)
	}
	kind, err := model.ParseMatchKind(m[5])
	if err != nil {
		return model.MatchRecord{}, err
	}
	return model.MatchRecord{
		Category:     cat,
		LeftAddress:  leftAddr,
		RightAddress: rightAddr,
		Confidence:   confidence,
		Kind:         kind,
	}, nil
}
