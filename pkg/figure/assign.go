package figure

import (
	"github.com/figsheet/figsheet/pkg/manifest"
)

// BuildEntries reconciles the markdown view of a document (image
// references with headings and trailing caption lines) with the
// manifest view (image elements with geometry and attached caption
// candidates), producing the annotated entries the grouper consumes.
//
// Reconciliation is by normalized image path, falling back to basename
// so path-prefix differences between the two renditions do not break
// the join. When the document has no markdown rendition, entries are
// built directly from the manifest's image elements.
//
// Caption precedence per entry, strongest first:
//  1. a validated caption from the markdown line
//  2. the spatially matched caption element (validated), which also
//     supplies the caption bbox
//  3. the image's own attached caption candidate (validated)
//
// A spatial match may override a weaker markdown caption only when the
// markdown caption failed validation or both agree on the ordinal,
// which prevents a neighbouring figure's caption from stealing the
// slot.
func BuildEntries(m *manifest.Manifest, mdEntries []manifest.MarkdownEntry) []Entry {
	images := m.Images()
	matched := MatchCaptions(images, m.Captions())

	byPath := make(map[string]int, len(images))
	byBase := make(map[string]int, len(images))
	for i, img := range images {
		if p := manifest.NormalizePath(img.SourcePath); p != "" {
			byPath[p] = i
			if b := manifest.Basename(p); b != "" {
				if _, dup := byBase[b]; !dup {
					byBase[b] = i
				}
			}
		}
	}

	if len(mdEntries) == 0 {
		entries := make([]Entry, 0, len(images))
		for i, img := range images {
			entries = append(entries, newEntry(img, manifest.MarkdownEntry{}, matched, i))
		}
		return entries
	}

	entries := make([]Entry, 0, len(mdEntries))
	for _, md := range mdEntries {
		idx, ok := lookupImage(md.ImageRel, byPath, byBase)
		if !ok {
			// No geometry; the entry can still be rendered and
			// filtered, it just never participates in grouping
			// beyond a singleton.
			e := Entry{ImageRel: md.ImageRel, Heading: md.Heading}
			if purified, valid := Validate(md.Caption); valid {
				e.Caption = purified
				if n, hasN := ExtractOrdinal(purified); hasN {
					e.Ordinal, e.HasOrdinal = n, true
				}
			}
			entries = append(entries, e)
			continue
		}
		entries = append(entries, newEntry(images[idx], md, matched, idx))
	}
	return entries
}

func lookupImage(rel string, byPath, byBase map[string]int) (int, bool) {
	p := manifest.NormalizePath(rel)
	if p == "" {
		return 0, false
	}
	if i, ok := byPath[p]; ok {
		return i, true
	}
	if i, ok := byBase[manifest.Basename(p)]; ok {
		return i, true
	}
	return 0, false
}

func newEntry(img manifest.Element, md manifest.MarkdownEntry, matched map[int]manifest.Element, imgIdx int) Entry {
	e := Entry{
		Element:   img,
		ImageRel:  md.ImageRel,
		Heading:   md.Heading,
		PageIndex: img.PageIndex,
		BBox:      img.BBox,
		HasBBox:   true,
	}

	if purified, valid := Validate(md.Caption); valid {
		e.Caption = purified
	}

	if cap, ok := matched[imgIdx]; ok {
		if purified, valid := Validate(cap.Text); valid {
			if e.Caption == "" || sameOrdinal(e.Caption, purified) {
				e.Caption = purified
				bbox := cap.BBox
				e.CaptionBBox = &bbox
			}
		}
	}

	if e.Caption == "" {
		if purified, valid := Validate(img.FirstCaption()); valid {
			e.Caption = purified
			// Attached captions have no independent bbox; the image
			// bbox is the best available anchor.
			bbox := img.BBox
			e.CaptionBBox = &bbox
		}
	}

	if e.Caption != "" {
		if n, ok := ExtractOrdinal(e.Caption); ok {
			e.Ordinal, e.HasOrdinal = n, true
		}
	}
	return e
}

func sameOrdinal(a, b string) bool {
	na, oka := ExtractOrdinal(a)
	nb, okb := ExtractOrdinal(b)
	return oka && okb && na == nb
}
