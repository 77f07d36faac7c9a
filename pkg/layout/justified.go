package layout

// justifiedPacker lays tiles in photo-album rows: each row's tiles
// share one height and are scaled together so the row spans the full
// content width. The final row keeps the target height instead of
// being stretched.
type justifiedPacker struct{}

func (justifiedPacker) Name() string { return "justified" }

// rowsPerPage sets the target row height as a fraction of the content
// height.
const justifiedRowsPerPage = 3.0

func (justifiedPacker) Pack(tiles []Tile, cfg Config) []Page {
	if len(tiles) == 0 {
		return nil
	}
	targetH := cfg.ContentH() / justifiedRowsPerPage

	var rows []row
	var pending []Tile
	pendingW := 0.0

	flushRow := func(justify bool) {
		if len(pending) == 0 {
			return
		}
		rows = append(rows, buildJustifiedRow(cfg, pending, targetH, justify))
		pending, pendingW = nil, 0
	}

	for _, t := range tiles {
		w := scaledWidth(t, targetH)
		gutters := float64(len(pending)) * cfg.Gutter
		if len(pending) > 0 && pendingW+gutters+w > cfg.ContentW() {
			flushRow(true)
		}
		pending = append(pending, t)
		pendingW += w
	}
	flushRow(false)

	return paginate(rows, cfg)
}

// scaledWidth is the tile width at the given row height, uncapped.
func scaledWidth(t Tile, rowH float64) float64 {
	if t.H <= 0 {
		return rowH
	}
	return t.W * rowH / t.H
}

// buildJustifiedRow scales the row's tiles to a common height. When
// justify is set, the common height is solved so the images plus
// gutters exactly span the content width; the solved height is capped
// so no tile exceeds MaxUpscale.
func buildJustifiedRow(cfg Config, tiles []Tile, targetH float64, justify bool) row {
	gutters := float64(len(tiles)-1) * cfg.Gutter
	rowH := targetH
	if justify {
		sum := 0.0
		for _, t := range tiles {
			sum += t.Aspect()
		}
		if sum > 0 {
			rowH = (cfg.ContentW() - gutters) / sum
		}
	}
	for _, t := range tiles {
		if maxH := t.H * cfg.MaxUpscale; rowH > maxH {
			rowH = maxH
		}
	}
	// No single tile may overrun the content width, whatever height
	// the solve produced.
	for _, t := range tiles {
		if a := t.Aspect(); a > 0 && a*rowH > cfg.ContentW() {
			rowH = cfg.ContentW() / a
		}
	}
	if rowH > cfg.ContentH() {
		rowH = cfg.ContentH()
	}

	var r row
	x := cfg.Margin
	for _, t := range tiles {
		w := scaledWidth(t, rowH)
		lines, capH := captionBlock(cfg, t.Caption, w)
		h := rowH
		w, h = shrinkToHeight(w, h, capH, cfg.ContentH())
		r.cells = append(r.cells, Placement{
			Tile:         t,
			X:            x,
			W:            w,
			H:            h,
			CaptionLines: lines,
			CaptionH:     capH,
		})
		if h+capH > r.h {
			r.h = h + capH
		}
		x += w + cfg.Gutter
	}
	return r
}
