// Package ingest discovers and parses the raw inputs of a run: per-version
// export dumps, pairwise diff reports, and existing version bins. It adapts
// them into the record model the version graph is built from.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// openInput opens a dump or report file, transparently decompressing
// gzip-compressed inputs by their .gz suffix.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return &gzipFile{zr: zr, f: f}, nil
}

// findInput locates a named dump inside a directory, preferring the plain
// file over its .gz variant. It returns "" when neither exists.
func findInput(dir, name string) string {
	plain := filepath.Join(dir, name)
	if _, err := os.Stat(plain); err == nil {
		return plain
	}
	compressed := plain + ".gz"
	if _, err := os.Stat(compressed); err == nil {
		return compressed
	}
	return ""
}

type gzipFile struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipFile) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
