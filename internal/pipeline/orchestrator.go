// Package pipeline drives one addrbin run over a root directory: parallel
// ingestion of exports, diffs and bins, version-graph construction, ID
// propagation, and writing of new version bins.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/binforge/addrbin/internal/config"
	"github.com/binforge/addrbin/internal/graph"
	"github.com/binforge/addrbin/internal/ingest"
	"github.com/binforge/addrbin/internal/logger"
	"github.com/binforge/addrbin/internal/model"
	"github.com/binforge/addrbin/internal/propagate"
)

// Result contains statistics and status of one run.
type Result struct {
	Root        string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Report      *propagate.Report
	BinsWritten []string
	Warnings    []string
	Errors      []error
	Success     bool
}

// Ingested is the outcome of the ingestion phase: the version nodes (with
// anchor tables attached) and diff edges the graph is built from.
type Ingested struct {
	Nodes    []*model.VersionNode
	Edges    []*model.DiffEdge
	Warnings []string
}

// Orchestrator coordinates the full pipeline. It must be initialized with
// Initialize() before use.
type Orchestrator struct {
	cfg         *config.Config
	root        string
	logger      *logger.Logger
	discovered  *ingest.Discovered
	initialized bool
}

// NewOrchestrator creates an orchestrator for one root directory.
func NewOrchestrator(cfg *config.Config, root string, log *logger.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if root == "" {
		return nil, fmt.Errorf("root directory is empty")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Orchestrator{cfg: cfg, root: root, logger: log}, nil
}

// Initialize discovers the inputs under the root directory. It must be
// called before Execute().
func (o *Orchestrator) Initialize() error {
	if o.initialized {
		return nil
	}
	d, err := ingest.Discover(o.root)
	if err != nil {
		return fmt.Errorf("input discovery failed: %w", err)
	}
	o.discovered = d
	o.initialized = true

	o.logger.Infow("Discovered inputs",
		"root", o.root,
		"versions", len(d.ExportDirs),
		"diffs", len(d.DiffFiles),
		"bins", len(d.BinFiles),
	)
	return nil
}

// Discovered returns the input inventory. It is nil before Initialize().
func (o *Orchestrator) Discovered() *ingest.Discovered {
	return o.discovered
}

// workers returns the effective worker bound for parallel phases.
func (o *Orchestrator) workers() int {
	if o.cfg.Processing.Workers > 0 {
		return o.cfg.Processing.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// IngestAll parses every discovered input in parallel. Export and diff
// parsing failures exclude only the affected version or edge and surface as
// warnings; a bin that cannot be decoded or attached fails the run, since an
// unreadable anchor cannot be trusted.
func (o *Orchestrator) IngestAll(ctx context.Context) (*Ingested, error) {
	if !o.initialized {
		return nil, fmt.Errorf("orchestrator not initialized")
	}
	result := &Ingested{Warnings: append([]string(nil), o.discovered.Warnings...)}

	var mu sync.Mutex
	nodeByVersion := make(map[model.Version]*model.VersionNode)

	// Exports and diffs are independent files with no shared mutable state.
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(o.workers())

	for _, version := range o.discovered.Versions() {
		dir := o.discovered.ExportDirs[version]
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			node, err := ingest.ReadExports(dir, version)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.WithVersion(version.String()).Warnw("Export excluded", "error", err)
				result.Warnings = append(result.Warnings, fmt.Sprintf("version %s excluded: %v", version, err))
				return nil
			}
			nodeByVersion[version] = node
			return nil
		})
	}

	edgeSlots := make([]*model.DiffEdge, len(o.discovered.DiffFiles))
	for i, df := range o.discovered.DiffFiles {
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			edge, err := ingest.ReadDiff(df.Path, df.Left, df.Right)
			if err != nil {
				mu.Lock()
				o.logger.WithFile(df.Path).Warnw("Diff excluded", "error", err)
				result.Warnings = append(result.Warnings, fmt.Sprintf("diff %s excluded: %v", df.Path, err))
				mu.Unlock()
				return nil
			}
			edgeSlots[i] = edge
			return nil
		})
	}

	binSlots := make([]*ingest.DecodedBin, len(o.discovered.BinFiles))
	binVersions := make([]model.Version, 0, len(o.discovered.BinFiles))
	for v := range o.discovered.BinFiles {
		binVersions = append(binVersions, v)
	}
	model.SortVersions(binVersions)
	for i, version := range binVersions {
		path := o.discovered.BinFiles[version]
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			decoded, err := ingest.ReadBin(path, version)
			if err != nil {
				return err
			}
			binSlots[i] = decoded
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	// Attach anchor tables. A bin for a version with no export data, or
	// with a base address disagreeing with the export, is fatal.
	for _, decoded := range binSlots {
		node, ok := nodeByVersion[decoded.Version]
		if !ok {
			return nil, fmt.Errorf("found bin for version %s, but no corresponding export data", decoded.Version)
		}
		if node.BaseAddress != decoded.BaseAddress {
			return nil, &graph.DuplicateVersionError{
				Version: decoded.Version,
				BaseA:   node.BaseAddress,
				BaseB:   decoded.BaseAddress,
			}
		}
		node.IDs = decoded.Table
	}

	// Edges touching a version that failed export parsing follow that
	// version out of the run; edges naming a version never exported at all
	// stay in and fail graph construction.
	for i, edge := range edgeSlots {
		if edge == nil {
			continue
		}
		df := o.discovered.DiffFiles[i]
		if dropped, v := o.edgeDropped(edge, nodeByVersion); dropped {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("diff %s excluded: version %s was excluded by a parse failure", df.Path, v))
			continue
		}
		result.Edges = append(result.Edges, edge)
	}

	for _, version := range o.discovered.Versions() {
		if node, ok := nodeByVersion[version]; ok {
			result.Nodes = append(result.Nodes, node)
		}
	}

	o.logger.Infow("Ingestion complete",
		"versions", len(result.Nodes),
		"edges", len(result.Edges),
		"anchors", len(binSlots),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// edgeDropped reports whether an edge endpoint was discovered but excluded
// by an export parse failure, and which version that was.
func (o *Orchestrator) edgeDropped(edge *model.DiffEdge, nodes map[model.Version]*model.VersionNode) (bool, model.Version) {
	for _, v := range []model.Version{edge.Left, edge.Right} {
		if _, parsed := nodes[v]; parsed {
			continue
		}
		if _, discovered := o.discovered.ExportDirs[v]; discovered {
			return true, v
		}
	}
	return false, model.Version{}
}

// Execute runs the full pipeline and writes a bin for every version resolved
// this run that does not already have one.
func (o *Orchestrator) Execute(ctx context.Context) (*Result, error) {
	result := &Result{Root: o.root, StartedAt: time.Now()}
	finish := func() *Result {
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
		return result
	}

	ing, err := o.IngestAll(ctx)
	if err != nil {
		return nil, err
	}
	result.Warnings = ing.Warnings

	g, err := graph.Build(ing.Nodes, ing.Edges)
	if err != nil {
		return nil, err
	}

	report, err := propagate.Resolve(g, propagate.Options{
		ModifiedConfidenceThreshold: o.cfg.Processing.ModifiedConfidenceThreshold,
		Workers:                     o.workers(),
	})
	if err != nil {
		return nil, err
	}
	result.Report = report

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	written, writeErrs := o.writeBins(ctx, g, report)
	result.BinsWritten = written
	result.Errors = append(result.Errors, writeErrs...)

	resolvedCount := report.CountByStatus(propagate.StatusResolved)
	pending := resolvedCount + report.CountByStatus(propagate.StatusUnreachable) + report.CountByStatus(propagate.StatusFailed)
	// A run with nothing left to resolve is a success; otherwise at least
	// one version must have resolved.
	result.Success = resolvedCount > 0 || pending == 0

	o.logger.Infow("Run complete",
		"resolved", resolvedCount,
		"anchors", report.CountByStatus(propagate.StatusAnchor),
		"unreachable", report.CountByStatus(propagate.StatusUnreachable),
		"failed", report.CountByStatus(propagate.StatusFailed),
		"bins_written", len(written),
		"duration", time.Since(result.StartedAt),
	)
	return finish(), nil
}
