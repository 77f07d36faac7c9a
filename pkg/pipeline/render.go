package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/figsheet/figsheet/pkg/layout"
	"github.com/figsheet/figsheet/pkg/render"
	"github.com/figsheet/figsheet/pkg/render/sink"
	"github.com/figsheet/figsheet/pkg/report"
	"github.com/figsheet/figsheet/pkg/typeset"
)

// renderSheets rasterizes the packed pages, prefixing the cover page
// when requested.
func (r *Runner) renderSheets(ctx context.Context, pages []layout.Page, images tileImages, font *typeset.FontMeasurer, opts Options, rep *report.Report) ([]sink.Page, error) {
	var renderOpts []render.Option
	if font != nil {
		renderOpts = append(renderOpts, render.WithFont(font))
	}
	if opts.Frames {
		renderOpts = append(renderOpts, render.WithFrames())
	}

	var sheets []sink.Page
	index := 0

	if opts.Cover {
		cover := render.Cover(int(opts.PageW), int(opts.PageH), render.CoverInfo{
			Title:   opts.Title,
			Source:  documentStem(opts.Manifest),
			RunID:   rep.RunID,
			Figures: totalPlacements(pages),
			Pages:   len(pages),
		}, font, renderOpts...)
		sheets = append(sheets, sink.Page{Index: index, Image: cover})
		index++
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := render.Page(p, images, renderOpts...)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Index, err)
		}
		sheets = append(sheets, sink.Page{Index: index, Image: img})
		index++
	}
	return sheets, nil
}

func totalPlacements(pages []layout.Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Placements)
	}
	return n
}

// writeOutputs fans the rendered sheets and the report out to every
// requested format under OutDir.
func (r *Runner) writeOutputs(ctx context.Context, sheets []sink.Page, rep *report.Report, opts Options) error {
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch format {
		case FormatPNG:
			err = sink.PNGDir{Dir: opts.OutDir}.Write(sheets)
		case FormatPDF:
			err = sink.PDF{Path: filepath.Join(opts.OutDir, "sheets.pdf")}.Write(sheets)
		case FormatHTML:
			err = sink.HTML{Dir: opts.OutDir, Title: coalesce(opts.Title, documentStem(opts.Manifest))}.Write(sheets)
		case FormatJSON:
			err = report.FileStore{Path: filepath.Join(opts.OutDir, "report.json")}.Save(ctx, rep)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
	}
	return nil
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
