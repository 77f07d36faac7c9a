// Package manifest loads the content manifest describing a document's
// extracted visual elements.
//
// A manifest is an ordered JSON list produced by an external
// content-parsing service. Each item carries a page index, a bounding
// box in document coordinates, a type discriminator, and either an
// image path with optional caption candidates or a text payload. This
// package is purely about loading and normalizing that structure; it
// never touches image bytes.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/figsheet/figsheet/pkg/geom"
)

// Kind discriminates the element variants this engine consumes.
type Kind string

const (
	// KindImage is an extracted image fragment backed by a raster file.
	KindImage Kind = "image"

	// KindCaption is a text element that may serve as a figure caption.
	KindCaption Kind = "caption-candidate"
)

// Element is one extracted visual primitive. Elements are immutable
// once loaded.
type Element struct {
	// Index is the element's position in the source manifest.
	Index int

	// PageIndex is the zero-based page the element was extracted from.
	PageIndex int

	// BBox is the element's bounding box in document coordinates.
	BBox geom.Rect

	// Kind is the element variant.
	Kind Kind

	// SourcePath is the image file path relative to the document root.
	// Set for KindImage only.
	SourcePath string

	// Text is the text payload. Set for KindCaption only.
	Text string

	// CaptionCandidates holds the raw caption strings the extractor
	// attached directly to an image element, in manifest order.
	// Set for KindImage only.
	CaptionCandidates []string
}

// FirstCaption returns the first non-empty attached caption candidate.
func (e Element) FirstCaption() string {
	for _, c := range e.CaptionCandidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}

// Manifest is the loaded element list for one document.
type Manifest struct {
	Elements []Element
}

// rawItem mirrors the external manifest schema.
type rawItem struct {
	Type         string          `json:"type"`
	PageIdx      int             `json:"page_idx"`
	BBox         json.RawMessage `json:"bbox"`
	ImgPath      string          `json:"img_path"`
	ImageCaption []string        `json:"image_caption"`
	Text         string          `json:"text"`
}

// Load reads and parses the manifest file at path. An unreadable or
// malformed manifest is the one process-fatal condition of the engine,
// so errors here must abort the document run.
func Load(p string) (*Manifest, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", p, err)
	}
	return m, nil
}

// Parse decodes a manifest from its JSON bytes. Items without a
// well-formed 4-element bbox are dropped; items with an unknown type
// are ignored. Image elements keep their attached caption candidates.
func Parse(data []byte) (*Manifest, error) {
	var items []rawItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	m := &Manifest{}
	for i, item := range items {
		var bbox geom.Rect
		if len(item.BBox) == 0 || bbox.UnmarshalJSON(item.BBox) != nil {
			continue
		}
		if bbox.Empty() {
			continue
		}
		page := item.PageIdx
		if page < 0 {
			continue
		}

		switch strings.ToLower(item.Type) {
		case "image":
			m.Elements = append(m.Elements, Element{
				Index:             i,
				PageIndex:         page,
				BBox:              bbox,
				Kind:              KindImage,
				SourcePath:        strings.TrimSpace(item.ImgPath),
				CaptionCandidates: item.ImageCaption,
			})
		case "text", "image_caption", "caption":
			text := strings.TrimSpace(item.Text)
			if text == "" {
				continue
			}
			m.Elements = append(m.Elements, Element{
				Index:     i,
				PageIndex: page,
				BBox:      bbox,
				Kind:      KindCaption,
				Text:      text,
			})
		}
	}
	return m, nil
}

// Images returns the image elements in reading order
// (page, top edge, left edge).
func (m *Manifest) Images() []Element {
	return m.byKind(KindImage)
}

// Captions returns the caption-candidate elements in reading order.
// Attached image captions are also surfaced as candidates, anchored at
// the owning image's bbox, so images whose captions were folded into
// the image element still participate in spatial matching.
func (m *Manifest) Captions() []Element {
	caps := m.byKind(KindCaption)
	for _, img := range m.byKind(KindImage) {
		if text := img.FirstCaption(); text != "" {
			caps = append(caps, Element{
				Index:     img.Index,
				PageIndex: img.PageIndex,
				BBox:      img.BBox,
				Kind:      KindCaption,
				Text:      text,
			})
		}
	}
	sortElements(caps)
	return caps
}

func (m *Manifest) byKind(k Kind) []Element {
	var out []Element
	for _, e := range m.Elements {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	sortElements(out)
	return out
}

func sortElements(elems []Element) {
	sort.SliceStable(elems, func(i, j int) bool {
		a, b := elems[i], elems[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.BBox.X0 < b.BBox.X0
	})
}

// NormalizePath canonicalizes an image path for matching across the
// manifest and markdown views of the same document: backslashes become
// slashes and leading/trailing separators are dropped.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	return strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
}

// Basename returns the final path component after normalization.
func Basename(p string) string {
	return path.Base(NormalizePath(p))
}
