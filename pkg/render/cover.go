package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/figsheet/figsheet/pkg/typeset"
)

// CoverInfo is what the cover page states about a run. It carries no
// wall-clock facts so the cover raster stays identical across reruns.
type CoverInfo struct {
	Title   string
	Source  string
	RunID   string
	Figures int
	Pages   int
}

// Cover renders a title page ahead of the figure sheets. The layout
// is deliberately plain: centered title, then a small block of run
// facts.
func Cover(w, h int, info CoverInfo, font *typeset.FontMeasurer, opts ...Option) image.Image {
	r := newRenderer(opts...)

	dc := gg.NewContext(w, h)
	dc.SetColor(r.background)
	dc.Clear()
	dc.SetColor(r.captionCol)

	if font == nil {
		return dc.Image()
	}
	dc.SetFontFace(font.Face())
	lineH := font.LineHeight()

	title := info.Title
	if title == "" {
		title = info.Source
	}
	lines := typeset.Wrap(font, title, float64(w)*0.8, 3)
	y := float64(h) * 0.4
	for _, line := range lines {
		drawCentered(dc, font, line, float64(w), y)
		y += lineH * 1.2
	}

	y += lineH * 2
	facts := []string{
		fmt.Sprintf("%d figures on %d pages", info.Figures, info.Pages),
	}
	if info.RunID != "" {
		facts = append(facts, "run "+info.RunID)
	}
	for _, line := range facts {
		drawCentered(dc, font, line, float64(w), y)
		y += lineH * 1.4
	}

	return dc.Image()
}

func drawCentered(dc *gg.Context, font *typeset.FontMeasurer, line string, pageW, y float64) {
	x := (pageW - font.Width(line)) / 2
	if x < 0 {
		x = 0
	}
	dc.DrawString(line, x, y)
}
