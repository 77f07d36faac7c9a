// Package render rasterizes packed pages into sheet images.
//
// # Overview
//
// This package turns a [layout.Page] and its tile images into a
// finished raster sheet: tiles are scaled to their placements, drawn
// onto the page canvas, and captions are typeset beneath them. It
// also draws the optional cover sheet.
//
// # Rendering a page
//
//	img, err := render.Page(page, tiles,
//	    render.WithFont(measurer),
//	    render.WithFrames(true),
//	)
//
// Captions require a font; without [WithFont] the placements render
// without caption text.
//
// # Output sinks
//
// The [sink] subpackage writes rendered sheets to their final form:
// a PNG directory, a single PDF, or an HTML index.
//
// [sink]: github.com/figsheet/figsheet/pkg/render/sink
package render
