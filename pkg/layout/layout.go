// Package layout packs composed figure tiles onto fixed-size pages.
//
// Three packing strategies share one interface: the hybrid packer
// (full-width rows for wide tiles, two columns for the rest), the
// justified packer (equal-height rows justified to the page width),
// and the masonry packer (shortest-column placement). All three scale
// tiles down to fit but never crop, and reserve room under each image
// for its wrapped caption.
package layout

import (
	"math"

	"github.com/figsheet/figsheet/pkg/typeset"
)

// Tile is the packer's view of a composed figure: intrinsic pixel
// extent plus the caption that must be typeset beneath it.
type Tile struct {
	ID      string
	W, H    float64
	Caption string
}

// Aspect returns width over height.
func (t Tile) Aspect() float64 {
	if t.H <= 0 {
		return 1
	}
	return t.W / t.H
}

// Placement is one tile positioned on a page. The image box and the
// caption lines beneath it together occupy [Y, Y+H+CaptionH).
type Placement struct {
	Tile Tile

	// X, Y, W, H is the image box in page pixels.
	X, Y, W, H float64

	// CaptionLines is the caption wrapped to W. Empty when the tile
	// has no caption.
	CaptionLines []string

	// CaptionH is the vertical extent reserved for the caption block.
	CaptionH float64
}

// Scale returns the applied scale factor relative to the tile's
// intrinsic width.
func (p Placement) Scale() float64 {
	if p.Tile.W <= 0 {
		return 1
	}
	return p.W / p.Tile.W
}

// Page is one packed output page.
type Page struct {
	Index      int
	W, H       float64
	Placements []Placement
}

// FillRatio is the fraction of the page area covered by image boxes
// and caption blocks.
func (p Page) FillRatio() float64 {
	if p.W <= 0 || p.H <= 0 {
		return 0
	}
	area := 0.0
	for _, pl := range p.Placements {
		area += pl.W * (pl.H + pl.CaptionH)
	}
	return area / (p.W * p.H)
}

// Config carries the page geometry and caption typography shared by
// all packers.
type Config struct {
	PageW, PageH float64
	Margin       float64
	Gutter       float64

	// Measurer and the caption limits drive caption block sizing.
	Measurer        typeset.Measurer
	CaptionMaxLines int
	CaptionLeading  float64

	// WideAspect is the aspect ratio at which the hybrid packer gives
	// a tile its own full-width row.
	WideAspect float64

	// Columns is the masonry column count.
	Columns int

	// TargetFill is the masonry packer's squeeze tolerance: a tile
	// that almost fits the remaining column may shrink to at most
	// TargetFill of its fitted height instead of spilling to a new
	// page. MaxUpscale bounds how far masonry and justified rows may
	// enlarge a tile past its intrinsic size.
	TargetFill float64
	MaxUpscale float64
}

// DefaultConfig returns page geometry tuned for 2480x3508 (A4 at
// 300dpi) sheets.
func DefaultConfig(m typeset.Measurer) Config {
	return Config{
		PageW:           2480,
		PageH:           3508,
		Margin:          96,
		Gutter:          48,
		Measurer:        m,
		CaptionMaxLines: 3,
		CaptionLeading:  8,
		WideAspect:      1.3,
		Columns:         2,
		TargetFill:      0.96,
		MaxUpscale:      1.25,
	}
}

// ContentW returns the usable width inside the margins.
func (c Config) ContentW() float64 { return c.PageW - 2*c.Margin }

// ContentH returns the usable height inside the margins.
func (c Config) ContentH() float64 { return c.PageH - 2*c.Margin }

// Packer packs tiles onto pages. Implementations must preserve tile
// order in the output, keep every placement inside the page margins,
// and never scale a tile above cfg.MaxUpscale or crop it.
type Packer interface {
	Name() string
	Pack(tiles []Tile, cfg Config) []Page
}

// New returns the packer registered under name, defaulting to the
// hybrid packer for unknown names.
func New(name string) Packer {
	switch name {
	case "justified":
		return justifiedPacker{}
	case "masonry":
		return masonryPacker{}
	default:
		return hybridPacker{}
	}
}

// Names lists the available packing strategies.
func Names() []string { return []string{"hybrid", "justified", "masonry"} }

// captionBlock wraps a caption at the given width and returns the
// lines plus the block height.
func captionBlock(cfg Config, caption string, width float64) ([]string, float64) {
	if caption == "" || cfg.Measurer == nil {
		return nil, 0
	}
	lines := typeset.Wrap(cfg.Measurer, caption, width, cfg.CaptionMaxLines)
	return lines, typeset.Height(cfg.Measurer, len(lines), cfg.CaptionLeading)
}

// fitWidth scales a tile to the target width, shrinking only.
func fitWidth(t Tile, width float64) (w, h float64) {
	if t.W <= 0 || t.H <= 0 {
		return width, width
	}
	if t.W <= width {
		return t.W, t.H
	}
	scale := width / t.W
	return width, t.H * scale
}

// shrinkToHeight rescales an already-fitted box so image plus caption
// fits maxH, preserving aspect.
func shrinkToHeight(w, h, captionH, maxH float64) (float64, float64) {
	if h+captionH <= maxH || h <= 0 {
		return w, h
	}
	avail := maxH - captionH
	if avail <= 0 {
		avail = 1
	}
	scale := avail / h
	return w * scale, avail
}

// centerPage moves a page's placements down so content is vertically
// centered. Used when a page holds a single placement.
func centerPage(p *Page, cfg Config) {
	if len(p.Placements) == 0 {
		return
	}
	top := math.Inf(1)
	bottom := math.Inf(-1)
	for _, pl := range p.Placements {
		if pl.Y < top {
			top = pl.Y
		}
		if b := pl.Y + pl.H + pl.CaptionH; b > bottom {
			bottom = b
		}
	}
	used := bottom - top
	offset := (cfg.PageH-used)/2 - top
	if offset <= 0 {
		return
	}
	for i := range p.Placements {
		p.Placements[i].Y += offset
	}
}
