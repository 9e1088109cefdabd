package propagate

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/binforge/addrbin/internal/graph"
	"github.com/binforge/addrbin/internal/model"
)

// Options tunes the resolution policy.
type Options struct {
	// ModifiedConfidenceThreshold excludes modified-kind matches below this
	// confidence from inheritance. Zero inherits every clean 1:1 modified
	// match.
	ModifiedConfidenceThreshold float64
	// Workers bounds per-version concurrency within one frontier wave.
	// Zero or negative means GOMAXPROCS.
	Workers int
}

// Resolve walks the graph outward from its anchor versions and assigns an ID
// table to every reachable version. If no anchors exist, the smallest version
// becomes the bootstrap anchor and receives dense fresh IDs per category.
//
// The produced report and every assigned table are a fixed function of the
// graph's content: versions resolve wave by wave in ascending version order,
// entities in ascending address order, and fresh-ID ranges are reserved
// before workers run.
func Resolve(g *graph.Graph, opts Options) (*Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	report := NewReport()
	if g.NodeCount() == 0 {
		return report, nil
	}

	counter := NewCounter()
	statuses := make(map[int]*VersionStatus, g.NodeCount())
	resolved := make(map[int]bool, g.NodeCount())

	for i, n := range g.Nodes() {
		if n.IDs != nil {
			counter.Seed(n.IDs)
			statuses[i] = &VersionStatus{Status: StatusAnchor}
			resolved[i] = true
		}
	}

	if len(resolved) == 0 {
		// Bootstrap: the smallest version gets dense IDs 0..n-1 per
		// category, in ascending address order. Nodes are version-sorted,
		// so index 0 is the smallest.
		node := g.NodeAt(0)
		table := model.NewIDTable()
		fresh := 0
		for _, cat := range model.AllCategories {
			addrs := node.SortedAddresses(cat)
			base := counter.Reserve(cat, len(addrs))
			for i, addr := range addrs {
				if err := table.Assign(cat, addr, base+uint32(i)); err != nil {
					return nil, fmt.Errorf("bootstrap of version %s: %w", node.Version, err)
				}
			}
			fresh += len(addrs)
		}
		node.IDs = table
		statuses[0] = &VersionStatus{Status: StatusResolved, Fresh: fresh}
		resolved[0] = true
	}

	failed := make(map[int]bool)
	for {
		eligible := frontier(g, resolved, failed)
		if len(eligible) == 0 {
			break
		}

		// Plan phase: classification only reads nodes resolved in earlier
		// waves, so every eligible version plans independently.
		plans := make([]*versionPlan, len(eligible))
		runBounded(workers, len(eligible), func(i int) {
			plans[i] = planVersion(g, eligible[i], resolved, opts)
		})

		// Reserve phase: contiguous fresh-ID ranges are handed out here, in
		// ascending version order, before any worker assigns a single ID.
		for _, p := range plans {
			for _, cat := range model.AllCategories {
				p.freshBase[cat] = counter.Reserve(cat, len(p.fresh[cat]))
			}
		}

		// Materialize phase: each plan builds its table in isolation.
		tables := make([]*model.IDTable, len(plans))
		errs := make([]error, len(plans))
		runBounded(workers, len(plans), func(i int) {
			tables[i], errs[i] = plans[i].materialize()
		})

		// Commit sequentially in version order.
		for i, p := range plans {
			node := g.NodeAt(p.node)
			if errs[i] != nil {
				failed[p.node] = true
				statuses[p.node] = &VersionStatus{Status: StatusFailed, Err: errs[i]}
				continue
			}
			node.IDs = tables[i]
			resolved[p.node] = true
			statuses[p.node] = &VersionStatus{
				Status:    StatusResolved,
				Inherited: p.inheritedCount,
				Fresh:     p.freshCount,
			}
			report.Diagnostics = append(report.Diagnostics, p.diags...)
		}
	}

	for i, n := range g.Nodes() {
		st, ok := statuses[i]
		if !ok {
			st = &VersionStatus{Status: StatusUnreachable}
		}
		report.Statuses.Set(n.Version, st)
	}
	return report, nil
}

// frontier returns, sorted ascending by version, every unresolved version
// with at least one edge to an already-resolved neighbor.
func frontier(g *graph.Graph, resolved, failed map[int]bool) []int {
	var eligible []int
	for i := 0; i < g.NodeCount(); i++ {
		if resolved[i] || failed[i] {
			continue
		}
		for _, e := range g.EdgesOf(i) {
			if resolved[e.Other(i)] {
				eligible = append(eligible, i)
				break
			}
		}
	}
	// Nodes are stored version-sorted, so index order is version order.
	sort.Ints(eligible)
	return eligible
}

// runBounded runs fn(0..n-1) on at most workers goroutines.
func runBounded(workers, n int, fn func(i int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// versionPlan is the outcome of classifying one version's entities against
// the match evidence of all its resolved neighbors.
type versionPlan struct {
	node      int
	version   model.Version
	inherited [model.NumCategories][]model.IDPair // ascending address
	fresh     [model.NumCategories][]uint64       // ascending address
	freshBase [model.NumCategories]uint32
	diags     []Diagnostic

	inheritedCount int
	freshCount     int
}

// ambiguityNote is one piece of ambiguous or conflicting evidence for an
// address, kept for the diagnostic.
type ambiguityNote struct {
	reason Reason
	detail string
}

// candidate is one cleanly-inherited ID offered by a resolved neighbor.
type candidate struct {
	id   uint32
	from model.Version
}

// planVersion classifies every entity of the version at node index vi as
// inheriting a specific ID or needing a fresh one, per category:
//
//   - clean 1:1 identical/modified match against a resolved neighbor
//     inherits that neighbor's ID;
//   - any other multiplicity, ambiguous-kind matches, below-threshold
//     modified matches, and conflicting neighbor evidence mint fresh IDs and
//     record a diagnostic;
//   - unmatched entities mint fresh IDs silently.
func planVersion(g *graph.Graph, vi int, resolved map[int]bool, opts Options) *versionPlan {
	v := g.NodeAt(vi)
	p := &versionPlan{node: vi, version: v.Version}

	for _, cat := range model.AllCategories {
		candidates := make(map[uint64][]candidate)
		ambiguous := make(map[uint64][]ambiguityNote)

		for _, e := range g.EdgesOf(vi) {
			ui := e.Other(vi)
			if !resolved[ui] {
				continue
			}
			u := g.NodeAt(ui)
			vIsLeft := e.Left == vi
			gatherEdgeEvidence(v, u, cat, e.Matches, vIsLeft, opts, candidates, ambiguous)
		}

		usedIDs := make(map[uint32]uint64) // inherited id -> claiming address
		for _, addr := range v.SortedAddresses(cat) {
			if notes, ok := ambiguous[addr]; ok {
				p.fresh[cat] = append(p.fresh[cat], addr)
				p.diags = append(p.diags, diagFromNotes(v.Version, cat, addr, notes))
				continue
			}
			cands := candidates[addr]
			if len(cands) == 0 {
				p.fresh[cat] = append(p.fresh[cat], addr)
				continue
			}
			id, conflict := uniqueCandidate(cands)
			if conflict {
				p.fresh[cat] = append(p.fresh[cat], addr)
				p.diags = append(p.diags, Diagnostic{
					Version:  v.Version,
					Category: cat,
					Address:  addr,
					Reason:   ReasonConflict,
					Detail:   describeCandidates(cands),
				})
				continue
			}
			if prev, taken := usedIDs[id]; taken {
				// A lower address already claimed this ID; minting a fresh
				// one preserves per-version uniqueness deterministically.
				p.fresh[cat] = append(p.fresh[cat], addr)
				p.diags = append(p.diags, Diagnostic{
					Version:  v.Version,
					Category: cat,
					Address:  addr,
					Reason:   ReasonInheritCollision,
					Detail:   fmt.Sprintf("id %d already inherited by address 0x%X", id, prev),
				})
				continue
			}
			usedIDs[id] = addr
			p.inherited[cat] = append(p.inherited[cat], model.IDPair{ID: id, Address: addr})
		}

		p.inheritedCount += len(p.inherited[cat])
		p.freshCount += len(p.fresh[cat])
	}
	return p
}

// gatherEdgeEvidence classifies one resolved neighbor's match records for one
// category, filling the candidate and ambiguity maps keyed by v-side address.
func gatherEdgeEvidence(v, u *model.VersionNode, cat model.Category, matches []model.MatchRecord,
	vIsLeft bool, opts Options, candidates map[uint64][]candidate, ambiguous map[uint64][]ambiguityNote) {

	vCount := make(map[uint64]int)
	uCount := make(map[uint64]int)
	for _, m := range matches {
		if m.Category != cat {
			continue
		}
		vAddr, uAddr := orient(m, vIsLeft)
		vCount[vAddr]++
		uCount[uAddr]++
	}

	for _, m := range matches {
		if m.Category != cat {
			continue
		}
		vAddr, uAddr := orient(m, vIsLeft)
		if !v.HasEntity(cat, vAddr) {
			continue
		}
		if vCount[vAddr] != 1 || uCount[uAddr] != 1 {
			ambiguous[vAddr] = append(ambiguous[vAddr], ambiguityNote{
				reason: ReasonMultiplicity,
				detail: fmt.Sprintf("%d records for 0x%X, %d records for 0x%X in %s", vCount[vAddr], vAddr, uCount[uAddr], uAddr, u.Version),
			})
			continue
		}
		switch m.Kind {
		case model.MatchAmbiguous:
			ambiguous[vAddr] = append(ambiguous[vAddr], ambiguityNote{
				reason: ReasonAmbiguousKind,
				detail: fmt.Sprintf("diff against %s flagged the match ambiguous", u.Version),
			})
			continue
		case model.MatchModified:
			if m.Confidence < opts.ModifiedConfidenceThreshold {
				ambiguous[vAddr] = append(ambiguous[vAddr], ambiguityNote{
					reason: ReasonLowConfidence,
					detail: fmt.Sprintf("modified match against %s has confidence %.3f below threshold %.3f", u.Version, m.Confidence, opts.ModifiedConfidenceThreshold),
				})
				continue
			}
		}
		if id, ok := u.IDs.Lookup(cat, uAddr); ok {
			candidates[vAddr] = append(candidates[vAddr], candidate{id: id, from: u.Version})
		}
		// A resolved neighbor without an ID at the matched address (an
		// anchor bin that predates the entity) contributes nothing; the
		// entity stays unmatched.
	}
}

// orient maps a match record onto (vAddr, uAddr) given which side v is on.
func orient(m model.MatchRecord, vIsLeft bool) (uint64, uint64) {
	if vIsLeft {
		return m.LeftAddress, m.RightAddress
	}
	return m.RightAddress, m.LeftAddress
}

// uniqueCandidate returns the single agreed ID, or conflict=true when the
// neighbors disagree.
func uniqueCandidate(cands []candidate) (id uint32, conflict bool) {
	id = cands[0].id
	for _, c := range cands[1:] {
		if c.id != id {
			return 0, true
		}
	}
	return id, false
}

// describeCandidates renders conflicting evidence sorted by neighbor version
// so diagnostics are deterministic.
func describeCandidates(cands []candidate) string {
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].from != sorted[j].from {
			return sorted[i].from.Less(sorted[j].from)
		}
		return sorted[i].id < sorted[j].id
	})
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = fmt.Sprintf("%s implies id %d", c.from, c.id)
	}
	return strings.Join(parts, "; ")
}

// diagFromNotes folds all ambiguous evidence for one address into a single
// diagnostic with a deterministic reason and detail.
func diagFromNotes(v model.Version, cat model.Category, addr uint64, notes []ambiguityNote) Diagnostic {
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].reason != notes[j].reason {
			return notes[i].reason < notes[j].reason
		}
		return notes[i].detail < notes[j].detail
	})
	details := make([]string, 0, len(notes))
	seen := make(map[string]bool, len(notes))
	for _, n := range notes {
		if !seen[n.detail] {
			seen[n.detail] = true
			details = append(details, n.detail)
		}
	}
	return Diagnostic{
		Version:  v,
		Category: cat,
		Address:  addr,
		Reason:   notes[0].reason,
		Detail:   strings.Join(details, "; "),
	}
}

// materialize builds the version's ID table from the plan. An assignment
// failure here is an engine defect; the caller aborts only this version.
func (p *versionPlan) materialize() (*model.IDTable, error) {
	table := model.NewIDTable()
	for _, cat := range model.AllCategories {
		for _, pair := range p.inherited[cat] {
			if err := table.Assign(cat, pair.Address, pair.ID); err != nil {
				return nil, fmt.Errorf("version %s: %w", p.version, err)
			}
		}
		for i, addr := range p.fresh[cat] {
			if err := table.Assign(cat, addr, p.freshBase[cat]+uint32(i)); err != nil {
				return nil, fmt.Errorf("version %s: %w", p.version, err)
			}
		}
	}
	return table, nil
}
