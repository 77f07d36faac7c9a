package layout

// masonryPacker drops each tile into the currently shortest column.
// It trades strict reading order on the page for density, and may
// upscale narrow tiles toward the column width to chase TargetFill.
type masonryPacker struct{}

func (masonryPacker) Name() string { return "masonry" }

func (masonryPacker) Pack(tiles []Tile, cfg Config) []Page {
	if len(tiles) == 0 {
		return nil
	}
	cols := cfg.Columns
	if cols < 1 {
		cols = 1
	}
	colW := (cfg.ContentW() - float64(cols-1)*cfg.Gutter) / float64(cols)

	var pages []Page
	page := Page{Index: 0, W: cfg.PageW, H: cfg.PageH}
	heights := make([]float64, cols)

	flush := func() {
		if len(page.Placements) == 0 {
			return
		}
		if len(page.Placements) == 1 {
			centerPage(&page, cfg)
		}
		pages = append(pages, page)
		page = Page{Index: len(pages), W: cfg.PageW, H: cfg.PageH}
		heights = make([]float64, cols)
	}

	for _, t := range tiles {
		w, h := masonryFit(t, colW, cfg.MaxUpscale)
		lines, capH := captionBlock(cfg, t.Caption, w)
		w, h = shrinkToHeight(w, h, capH, cfg.ContentH())

		col := shortestColumn(heights)
		if heights[col]+h+capH > cfg.ContentH() {
			// Squeeze into the remaining space when the shrink stays
			// above TargetFill; otherwise spill to a fresh page.
			remaining := cfg.ContentH() - heights[col] - capH
			if remaining > 0 && remaining >= h*cfg.TargetFill {
				w = w * remaining / h
				h = remaining
			} else if len(page.Placements) > 0 {
				flush()
				col = 0
			}
		}

		x := cfg.Margin + float64(col)*(colW+cfg.Gutter)
		y := cfg.Margin + heights[col]
		page.Placements = append(page.Placements, Placement{
			Tile:         t,
			X:            x,
			Y:            y,
			W:            w,
			H:            h,
			CaptionLines: lines,
			CaptionH:     capH,
		})
		heights[col] += h + capH + cfg.Gutter
	}
	flush()

	return pages
}

// masonryFit scales a tile to the column width. Unlike the other
// strategies it may upscale, bounded by maxUpscale, so sparse columns
// still approach a full page.
func masonryFit(t Tile, colW, maxUpscale float64) (w, h float64) {
	if t.W <= 0 || t.H <= 0 {
		return colW, colW
	}
	scale := colW / t.W
	if scale > maxUpscale {
		scale = maxUpscale
	}
	return t.W * scale, t.H * scale
}

func shortestColumn(heights []float64) int {
	best := 0
	for i, h := range heights {
		if h < heights[best] {
			best = i
		}
	}
	return best
}
