package figure

import (
	"fmt"
	"sort"

	"github.com/figsheet/figsheet/pkg/geom"
)

// Config holds the grouping thresholds. Every value is heuristic and
// tuned on real extractor output; none is guaranteed-correct, so all
// of them are exposed rather than buried as constants.
type Config struct {
	// Stage 0: ordinal propagation.
	OrdinalVGapRatio  float64 // max vertical gap as fraction of the page's tallest extent
	OrdinalMinOverlap float64 // min horizontal overlap to inherit an ordinal

	// Stage 2: vertical stacks.
	StackVGapRatio float64 // max vertical gap as fraction of assumed page height
	StackWidthSim  float64 // min width similarity

	// Stage 3: horizontal pairs.
	RowHGapRatio float64 // max horizontal gap as fraction of assumed page width
	RowHeightSim float64 // min height similarity

	// Assumed page extent used by stages 2 and 3, where no per-page
	// estimate is available.
	AssumedPageW float64
	AssumedPageH float64

	// Stage 4: connected-component merge. Deliberately aggressive; it
	// prefers one oversized group over a split figure.
	MergeVGapRatio      float64 // vertical gap ceiling, fraction of page height
	MergeHGapRatio      float64 // horizontal gap ceiling, fraction of page width
	MergeMinHOverlap    float64 // horizontal overlap floor for the vertical-dominant rule
	MergeMinVOverlap    float64 // vertical overlap floor for the horizontal-dominant rule
	MergeVGapTightRatio float64 // tighter vertical gap used by the horizontal-dominant rule
}

// DefaultConfig returns the tuned grouping thresholds.
func DefaultConfig() Config {
	return Config{
		OrdinalVGapRatio:  0.18,
		OrdinalMinOverlap: 0.18,
		StackVGapRatio:    0.10,
		StackWidthSim:     0.8,
		RowHGapRatio:      0.05,
		RowHeightSim:      0.8,
		AssumedPageW:      800,
		AssumedPageH:      1000,
		MergeVGapRatio:      0.18,
		MergeHGapRatio:      0.08,
		MergeMinHOverlap:    0.12,
		MergeMinVOverlap:    0.12,
		MergeVGapTightRatio: 0.10,
	}
}

// GroupEntries runs the full grouping cascade and returns the final
// figure groups in reading order. The cascade is a pipeline of pure
// stages, each consuming the previous stage's output and leaving its
// input untouched:
//
//	entries → propagateOrdinals → bindByOrdinal → bindStacks →
//	bindRows → singletons → mergeConnected → sorted groups
//
// Every input entry ends up in exactly one group.
func GroupEntries(entries []Entry, cfg Config) []Group {
	if len(entries) == 0 {
		return nil
	}

	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.BBox.X0 < b.BBox.X0
	})

	ordered = propagateOrdinals(ordered, cfg)

	grouped, rest := bindByOrdinal(ordered)

	stacks, rest := bindStacks(rest, cfg)
	grouped = append(grouped, stacks...)

	rows, rest := bindRows(rest, cfg)
	grouped = append(grouped, rows...)

	for _, e := range rest {
		grouped = append(grouped, protoGroup{members: []Entry{e}})
	}

	final := mergeConnected(grouped, cfg)
	sortGroups(final)
	assignIDs(final)
	return final
}

// protoGroup is an intermediate group before the merge pass resolves
// captions and identity.
type protoGroup struct {
	members []Entry
}

func (p protoGroup) union() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, m := range p.members {
		if m.HasBBox {
			rects = append(rects, m.BBox)
		}
	}
	return geom.UnionAll(rects)
}

func (p protoGroup) page() int { return majorityPage(p.members) }

// propagateOrdinals implements stage 0: within a page, walked
// top-to-bottom, an entry lacking both an ordinal and a trusted
// caption inherits the nearest preceding ordinal when it sits close
// below the previous ordinal-bearing bbox with sufficient horizontal
// overlap. This captures sub-panels wedged between a caption-bearing
// panel and unrelated content.
func propagateOrdinals(entries []Entry, cfg Config) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	for start := 0; start < len(out); {
		end := start
		for end < len(out) && out[end].PageIndex == out[start].PageIndex {
			end++
		}
		propagatePage(out[start:end], cfg)
		start = end
	}
	return out
}

func propagatePage(page []Entry, cfg Config) {
	// The tallest bbox extent on the page approximates the page
	// height; manifests do not carry page geometry.
	pageH := 0.0
	for _, e := range page {
		if e.HasBBox && e.BBox.Y1 > pageH {
			pageH = e.BBox.Y1
		}
	}
	if pageH <= 0 {
		pageH = 1000
	}
	maxGap := pageH * cfg.OrdinalVGapRatio

	var (
		lastOrdinal int
		lastBBox    geom.Rect
		haveLast    bool
	)
	for i := range page {
		e := &page[i]
		if !e.HasBBox {
			continue
		}
		if e.HasOrdinal {
			lastOrdinal, lastBBox, haveLast = e.Ordinal, e.BBox, true
			continue
		}
		if e.HasCaption() {
			// A trusted but unnumbered caption starts a new figure;
			// do not leak the previous ordinal past it.
			haveLast = false
			continue
		}
		if !haveLast {
			continue
		}
		gap := e.BBox.Y0 - lastBBox.Y1
		if gap >= 0 && gap <= maxGap &&
			geom.HorizontalOverlap(lastBBox, e.BBox) >= cfg.OrdinalMinOverlap {
			e.Ordinal, e.HasOrdinal = lastOrdinal, true
		}
	}
}

// bindByOrdinal implements stage 1, the strongest binding: entries on
// the same page sharing a parsed figure number always form one group.
func bindByOrdinal(entries []Entry) ([]protoGroup, []Entry) {
	type key struct{ page, ordinal int }
	buckets := make(map[key][]Entry)
	var keys []key
	var rest []Entry

	for _, e := range entries {
		if !e.HasOrdinal {
			rest = append(rest, e)
			continue
		}
		k := key{e.PageIndex, e.Ordinal}
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], e)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].page != keys[j].page {
			return keys[i].page < keys[j].page
		}
		return keys[i].ordinal < keys[j].ordinal
	})

	groups := make([]protoGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, protoGroup{members: buckets[k]})
	}
	return groups, rest
}

// bindStacks implements stage 2: among ungrouped entries, greedily
// extend vertical runs of similar-width, closely stacked panels whose
// caption presence is complementary.
func bindStacks(entries []Entry, cfg Config) ([]protoGroup, []Entry) {
	return bindRuns(entries, func(a, b Entry) bool {
		gap := b.BBox.Y0 - a.BBox.Y1
		if gap >= cfg.AssumedPageH*cfg.StackVGapRatio {
			return false
		}
		if geom.WidthSimilarity(a.BBox, b.BBox) <= cfg.StackWidthSim {
			return false
		}
		return complementaryStack(a, b)
	}, byColumnOrder)
}

// complementaryStack accepts a pair when exactly one side has a
// caption, or both do but the lower one's caption sits below the
// upper panel (a shared caption for the whole stack).
func complementaryStack(a, b Entry) bool {
	switch {
	case !a.HasCaption() && b.HasCaption():
		return true
	case a.HasCaption() && !b.HasCaption():
		return true
	case a.HasCaption() && b.HasCaption():
		return b.CaptionBBox != nil && b.CaptionBBox.Y0 > a.BBox.Y1
	}
	return false
}

// bindRows implements stage 3, the same idea rotated 90 degrees:
// horizontal pairs with similar heights and complementary captions.
func bindRows(entries []Entry, cfg Config) ([]protoGroup, []Entry) {
	return bindRuns(entries, func(a, b Entry) bool {
		gap := b.BBox.X0 - a.BBox.X1
		if gap <= 0 || gap >= cfg.AssumedPageW*cfg.RowHGapRatio {
			return false
		}
		if geom.HeightSimilarity(a.BBox, b.BBox) <= cfg.RowHeightSim {
			return false
		}
		return a.HasCaption() != b.HasCaption()
	}, byRowOrder)
}

func byColumnOrder(a, b Entry) bool {
	if a.BBox.Y0 != b.BBox.Y0 {
		return a.BBox.Y0 < b.BBox.Y0
	}
	return a.BBox.X0 < b.BBox.X0
}

func byRowOrder(a, b Entry) bool {
	if a.BBox.X0 != b.BBox.X0 {
		return a.BBox.X0 < b.BBox.X0
	}
	return a.BBox.Y0 < b.BBox.Y0
}

// bindRuns groups per-page runs of entries under an adjacency
// predicate. Entries without geometry pass straight through.
func bindRuns(entries []Entry, adjacent func(a, b Entry) bool, less func(a, b Entry) bool) ([]protoGroup, []Entry) {
	byPage := make(map[int][]Entry)
	var pages []int
	var rest []Entry

	for _, e := range entries {
		if !e.HasBBox {
			rest = append(rest, e)
			continue
		}
		if _, seen := byPage[e.PageIndex]; !seen {
			pages = append(pages, e.PageIndex)
		}
		byPage[e.PageIndex] = append(byPage[e.PageIndex], e)
	}
	sort.Ints(pages)

	var groups []protoGroup
	for _, page := range pages {
		onPage := byPage[page]
		sort.SliceStable(onPage, func(i, j int) bool { return less(onPage[i], onPage[j]) })

		i := 0
		for i < len(onPage) {
			run := []Entry{onPage[i]}
			j := i + 1
			for j < len(onPage) && adjacent(run[len(run)-1], onPage[j]) {
				run = append(run, onPage[j])
				j++
			}
			if len(run) > 1 {
				groups = append(groups, protoGroup{members: run})
			} else {
				rest = append(rest, run[0])
			}
			i = j
		}
	}
	return groups, rest
}

// mergeConnected implements stage 4: per page, union-find over group
// bbox unions under an adjacent-or-overlapping predicate. Biased
// toward not splitting one physical figure across tiles, accepting
// that adjacent distinct figures occasionally merge.
func mergeConnected(groups []protoGroup, cfg Config) []Group {
	byPage := make(map[int][]protoGroup)
	var pages []int
	for _, g := range groups {
		p := g.page()
		if _, seen := byPage[p]; !seen {
			pages = append(pages, p)
		}
		byPage[p] = append(byPage[p], g)
	}
	sort.Ints(pages)

	var final []Group
	for _, page := range pages {
		final = append(final, mergePage(byPage[page], cfg)...)
	}
	return final
}

func mergePage(groups []protoGroup, cfg Config) []Group {
	unions := make([]*geom.Rect, len(groups))
	var pageW, pageH float64
	for i, g := range groups {
		if u, ok := g.union(); ok {
			unions[i] = &u
			if u.X1 > pageW {
				pageW = u.X1
			}
			if u.Y1 > pageH {
				pageH = u.Y1
			}
		}
	}

	uf := newUnionFind(len(groups))
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if unions[i] == nil || unions[j] == nil {
				continue
			}
			if shouldMerge(*unions[i], *unions[j], pageW, pageH, cfg) {
				uf.union(i, j)
			}
		}
	}

	// Components in first-seen order keeps output deterministic.
	compIndex := make(map[int]int)
	var comps [][]Entry
	for i, g := range groups {
		root := uf.find(i)
		ci, seen := compIndex[root]
		if !seen {
			ci = len(comps)
			compIndex[root] = ci
			comps = append(comps, nil)
		}
		comps[ci] = append(comps[ci], g.members...)
	}

	out := make([]Group, 0, len(comps))
	for _, members := range comps {
		g := Group{
			Members:   members,
			PageIndex: majorityPage(members),
		}
		g.Caption, g.CaptionBBox = lowestCaption(members)
		out = append(out, g)
	}
	return out
}

// shouldMerge is the adjacent-or-overlapping predicate over two group
// bbox unions.
func shouldMerge(a, b geom.Rect, pageW, pageH float64, cfg Config) bool {
	if pageW < 1 {
		pageW = 1
	}
	if pageH < 1 {
		pageH = 1
	}
	vgap := geom.VerticalGap(a, b)
	hgap := geom.HorizontalGap(a, b)

	if vgap <= pageH*cfg.MergeVGapRatio &&
		(geom.HorizontalOverlap(a, b) >= cfg.MergeMinHOverlap || hgap <= pageW*cfg.MergeHGapRatio) {
		return true
	}
	if hgap <= pageW*cfg.MergeHGapRatio &&
		(geom.VerticalOverlap(a, b) >= cfg.MergeMinVOverlap || vgap <= pageH*cfg.MergeVGapTightRatio) {
		return true
	}
	return vgap == 0 && hgap == 0
}

// lowestCaption picks the authoritative caption for a merged group:
// the trusted caption positioned lowest on the page, falling back to
// the first trusted caption without a bbox. Ties resolve by member
// order, which is deterministic.
func lowestCaption(members []Entry) (string, *geom.Rect) {
	var (
		caption string
		bbox    *geom.Rect
	)
	for _, m := range members {
		if !m.HasCaption() {
			continue
		}
		if m.CaptionBBox != nil {
			if bbox == nil || m.CaptionBBox.Y0 > bbox.Y0 {
				caption = m.Caption
				b := *m.CaptionBBox
				bbox = &b
			}
		} else if caption == "" {
			caption = m.Caption
		}
	}
	return caption, bbox
}

func sortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		ua, okA := a.Union()
		ub, okB := b.Union()
		if okA != okB {
			return okB // groups without geometry sort last
		}
		if !okA {
			return false
		}
		if ua.Y0 != ub.Y0 {
			return ua.Y0 < ub.Y0
		}
		return ua.X0 < ub.X0
	})
}

// assignIDs labels groups p<page>-m<n> with n counting within each
// page in reading order. IDs are opaque to consumers but stable
// across reruns of the same manifest.
func assignIDs(groups []Group) {
	counts := make(map[int]int)
	for i := range groups {
		counts[groups[i].PageIndex]++
		groups[i].ID = fmt.Sprintf("p%d-m%d", groups[i].PageIndex, counts[groups[i].PageIndex])
	}
}
