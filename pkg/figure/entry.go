// Package figure turns a document's extracted image and caption
// elements into logical figure groups.
//
// The package owns three stages of the pipeline: validating caption
// candidates, pairing images with nearby captions, and the cascading
// grouping heuristic that decides which image fragments belong to one
// logical figure. Grouping is geometry-only; image bytes are never
// read here.
package figure

import (
	"github.com/figsheet/figsheet/pkg/geom"
	"github.com/figsheet/figsheet/pkg/manifest"
)

// Entry is one image element annotated with everything the grouper
// needs: the trusted caption (if any), its bbox, the parsed figure
// ordinal, and the section heading from the markdown rendition.
type Entry struct {
	// Element is the back-reference into the source manifest.
	Element manifest.Element

	// ImageRel is the image path as referenced by the markdown
	// rendition; empty when the entry came straight from the manifest.
	ImageRel string

	// Heading is the section heading in force where the image appears.
	Heading string

	// PageIndex and BBox mirror the element geometry for convenience.
	PageIndex int
	BBox      geom.Rect

	// HasBBox reports whether BBox is meaningful. Markdown entries
	// that could not be reconciled with a manifest element have no
	// geometry and only ever form singleton groups.
	HasBBox bool

	// Caption is the validated caption text, empty when no candidate
	// survived validation. Callers must treat empty as "no caption",
	// never substitute the raw candidate.
	Caption string

	// CaptionBBox is the matched caption's bbox, when known.
	CaptionBBox *geom.Rect

	// Ordinal is the figure/table number parsed from the caption, or
	// inherited during ordinal propagation. Valid only if HasOrdinal.
	Ordinal    int
	HasOrdinal bool
}

// HasCaption reports whether the entry carries a trusted caption.
func (e Entry) HasCaption() bool { return e.Caption != "" }

// SourcePath returns the best-known image path for the entry: the
// manifest path when reconciled, otherwise the markdown reference.
func (e Entry) SourcePath() string {
	if e.Element.SourcePath != "" {
		return e.Element.SourcePath
	}
	return e.ImageRel
}

// Group is a set of image fragments determined to belong to one
// logical, captioned figure. Groups are immutable once built; the
// connected-component merge pass replaces groups rather than
// mutating them.
type Group struct {
	// ID is unique within a run and stable across reruns.
	ID string

	// Members lists the constituent entries in reading order.
	Members []Entry

	// Caption is the single authoritative caption for the group,
	// possibly empty.
	Caption string

	// CaptionBBox is the bbox of the authoritative caption, if known.
	CaptionBBox *geom.Rect

	// PageIndex is the page carrying the majority of members.
	PageIndex int
}

// Union returns the bounding box covering all members that have
// geometry, and false when none do.
func (g Group) Union() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, m := range g.Members {
		if m.HasBBox {
			rects = append(rects, m.BBox)
		}
	}
	return geom.UnionAll(rects)
}

// majorityPage returns the page index held by most members, breaking
// ties toward the lower page.
func majorityPage(members []Entry) int {
	counts := map[int]int{}
	for _, m := range members {
		counts[m.PageIndex]++
	}
	best, bestCount := 0, -1
	for page, n := range counts {
		if n > bestCount || (n == bestCount && page < best) {
			best, bestCount = page, n
		}
	}
	return best
}
