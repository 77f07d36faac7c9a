// Package render rasterizes packed pages into images.
//
// The renderer draws each placement's tile at its packed position and
// typesets the wrapped caption beneath it. Output encoding is the
// sink's job; this package only produces pixels.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/figsheet/figsheet/pkg/layout"
	"github.com/figsheet/figsheet/pkg/typeset"
)

// Option configures a renderer.
type Option func(*renderer)

type renderer struct {
	font       *typeset.FontMeasurer
	background color.Color
	captionCol color.Color
	frame      bool
}

// WithFont sets the caption face. Without it captions are skipped.
func WithFont(f *typeset.FontMeasurer) Option {
	return func(r *renderer) { r.font = f }
}

// WithBackground sets the page background, default white.
func WithBackground(c color.Color) Option {
	return func(r *renderer) { r.background = c }
}

// WithCaptionColor sets the caption ink, default dark gray.
func WithCaptionColor(c color.Color) Option {
	return func(r *renderer) { r.captionCol = c }
}

// WithFrames draws a thin border around each tile. Useful when
// inspecting packer output.
func WithFrames() Option {
	return func(r *renderer) { r.frame = true }
}

func newRenderer(opts ...Option) renderer {
	r := renderer{
		background: color.White,
		captionCol: color.NRGBA{R: 60, G: 60, B: 60, A: 255},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Page rasterizes one packed page. tiles maps group IDs to composed
// images; a missing tile is an error because the packer placed it.
func Page(p layout.Page, tiles map[string]image.Image, opts ...Option) (image.Image, error) {
	r := newRenderer(opts...)

	dc := gg.NewContext(int(p.W), int(p.H))
	dc.SetColor(r.background)
	dc.Clear()

	if r.font != nil {
		dc.SetFontFace(r.font.Face())
	}

	for _, pl := range p.Placements {
		img, ok := tiles[pl.Tile.ID]
		if !ok {
			return nil, fmt.Errorf("render: no image for tile %s", pl.Tile.ID)
		}
		resized := imaging.Resize(img, int(pl.W), int(pl.H), imaging.Lanczos)
		dc.DrawImage(resized, int(pl.X), int(pl.Y))

		if r.frame {
			dc.SetLineWidth(1)
			dc.SetColor(r.captionCol)
			dc.DrawRectangle(pl.X, pl.Y, pl.W, pl.H)
			dc.Stroke()
		}

		if r.font != nil && len(pl.CaptionLines) > 0 {
			r.drawCaption(dc, pl)
		}
	}

	return dc.Image(), nil
}

// drawCaption centers each wrapped line under the image box.
func (r renderer) drawCaption(dc *gg.Context, pl layout.Placement) {
	dc.SetColor(r.captionCol)
	lineH := r.font.LineHeight()
	y := pl.Y + pl.H + lineH
	for _, line := range pl.CaptionLines {
		w := r.font.Width(line)
		x := pl.X + (pl.W-w)/2
		if x < pl.X {
			x = pl.X
		}
		dc.DrawString(line, x, y)
		y += lineH
	}
}
