package layout

// hybridPacker gives wide tiles a full-width row and pairs the rest
// into two columns. It is the default strategy and the one tuned for
// mixed paper figures, where charts are wide and panels are tall.
type hybridPacker struct{}

func (hybridPacker) Name() string { return "hybrid" }

func (hybridPacker) Pack(tiles []Tile, cfg Config) []Page {
	if len(tiles) == 0 {
		return nil
	}

	colW := (cfg.ContentW() - cfg.Gutter) / 2
	var rows []row

	i := 0
	for i < len(tiles) {
		t := tiles[i]
		if t.Aspect() >= cfg.WideAspect {
			rows = append(rows, buildRow(cfg, []Tile{t}, cfg.ContentW()))
			i++
			continue
		}
		// Pair with the next tile when it is also column-shaped.
		if i+1 < len(tiles) && tiles[i+1].Aspect() < cfg.WideAspect {
			rows = append(rows, buildRow(cfg, []Tile{t, tiles[i+1]}, colW))
			i += 2
			continue
		}
		rows = append(rows, buildRow(cfg, []Tile{t}, colW))
		i++
	}

	return paginate(rows, cfg)
}

// row is a horizontal band of placements positioned relative to the
// row's own top edge.
type row struct {
	cells []Placement
	h     float64
}

// buildRow fits each tile to cellW, wraps its caption at the fitted
// width, and lays the cells left to right. Row height is the tallest
// cell.
func buildRow(cfg Config, tiles []Tile, cellW float64) row {
	var r row
	x := cfg.Margin
	for _, t := range tiles {
		w, h := fitWidth(t, cellW)
		lines, capH := captionBlock(cfg, t.Caption, w)
		w, h = shrinkToHeight(w, h, capH, cfg.ContentH())
		r.cells = append(r.cells, Placement{
			Tile:         t,
			X:            x,
			Y:            0,
			W:            w,
			H:            h,
			CaptionLines: lines,
			CaptionH:     capH,
		})
		if h+capH > r.h {
			r.h = h + capH
		}
		x += cellW + cfg.Gutter
	}
	return r
}

// paginate stacks rows down the page, starting a new page whenever the
// next row would cross the bottom margin. Pages holding one placement
// are vertically centered.
func paginate(rows []row, cfg Config) []Page {
	var pages []Page
	page := Page{Index: 0, W: cfg.PageW, H: cfg.PageH}
	y := cfg.Margin

	flush := func() {
		if len(page.Placements) == 0 {
			return
		}
		if len(page.Placements) == 1 {
			centerPage(&page, cfg)
		}
		pages = append(pages, page)
		page = Page{Index: len(pages), W: cfg.PageW, H: cfg.PageH}
		y = cfg.Margin
	}

	for _, r := range rows {
		if y+r.h > cfg.PageH-cfg.Margin && len(page.Placements) > 0 {
			flush()
		}
		for _, cell := range r.cells {
			cell.Y = y
			page.Placements = append(page.Placements, cell)
		}
		y += r.h + cfg.Gutter
	}
	flush()
	return pages
}
