package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/binforge/addrbin/internal/bincodec"
	"github.com/binforge/addrbin/internal/graph"
	"github.com/binforge/addrbin/internal/model"
	"github.com/binforge/addrbin/internal/propagate"
)

// writeBins encodes and writes a bin for every version resolved this run
// that lacks one. Output paths are distinct, so writing is fully parallel.
// A failure aborts only that version's output; encoding happens entirely
// in memory so a failed encode never leaves corrupt bytes on disk.
func (o *Orchestrator) writeBins(ctx context.Context, g *graph.Graph, report *propagate.Report) (written []string, errs []error) {
	outDir := o.cfg.Output.Dir
	if outDir == "" {
		outDir = o.root
	}

	targets := report.ResolvedVersions()

	var mu sync.Mutex
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(o.workers())

	for _, version := range targets {
		if _, hasBin := o.discovered.BinFiles[version]; hasBin {
			continue
		}
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			path, err := o.writeBin(outDir, g, version)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			written = append(written, path)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		errs = append(errs, err)
	}

	sort.Strings(written)
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return written, errs
}

func (o *Orchestrator) writeBin(outDir string, g *graph.Graph, version model.Version) (string, error) {
	node := g.Node(version)
	path := filepath.Join(outDir, version.BinFileName())
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("cannot write bin for version %s: %s already exists", version, path)
	}

	var buf bytes.Buffer
	if err := bincodec.Encode(&buf, version, node.BaseAddress, node.IDs); err != nil {
		return "", fmt.Errorf("failed to encode bin for version %s: %w", version, err)
	}

	if !o.cfg.Verification.SkipVerification {
		if err := verifyEncoded(buf.Bytes(), node); err != nil {
			return "", fmt.Errorf("verification of bin for version %s failed: %w", version, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	o.logger.WithVersion(version.String()).Infow("Wrote version bin",
		"path", path,
		"entries", node.IDs.Total(),
	)
	return path, nil
}

// verifyEncoded decodes freshly encoded bytes and compares them against the
// resolved table, proving the round-trip before anything reaches disk.
func verifyEncoded(raw []byte, node *model.VersionNode) error {
	decoded, err := bincodec.Decode(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	if decoded.Version != node.Version {
		return fmt.Errorf("decoded version %s does not match %s", decoded.Version, node.Version)
	}
	if decoded.BaseAddress != node.BaseAddress {
		return fmt.Errorf("decoded base address 0x%X does not match 0x%X", decoded.BaseAddress, node.BaseAddress)
	}
	if !decoded.Table.Equal(node.IDs) {
		return fmt.Errorf("decoded table does not match the resolved table")
	}
	return nil
}
