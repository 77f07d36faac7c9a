package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/figsheet/figsheet/pkg/cache"
	errs "github.com/figsheet/figsheet/pkg/errors"
	"github.com/figsheet/figsheet/pkg/figure"
	"github.com/figsheet/figsheet/pkg/layout"
	"github.com/figsheet/figsheet/pkg/observability"
	"github.com/figsheet/figsheet/pkg/render/sink"
	"github.com/figsheet/figsheet/pkg/report"
	"github.com/figsheet/figsheet/pkg/typeset"
)

// Runner executes pipeline runs with tile caching. It is stateless
// apart from the cache, store, and logger; one Runner serves many
// concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  report.Store
	Logger *log.Logger
}

// NewRunner builds a runner. A nil cache disables caching, a nil
// keyer uses the default, a nil logger uses the package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Result is the outcome of one Execute call.
type Result struct {
	// Report holds the placement record, already finalized.
	Report *report.Report

	// Sheets are the rendered pages in output order, cover first
	// when one was requested.
	Sheets []sink.Page

	// Groups are the figure groups after filtering, for callers that
	// want to inspect or re-render.
	Groups []figure.Group

	// CacheInfo counts tile cache hits for this run.
	CacheInfo CacheInfo

	// Timings holds per-stage wall-clock durations. They live on the
	// result rather than the report so reruns on unchanged inputs
	// write byte-identical artifacts.
	Timings Timings
}

// Timings breaks the run down by stage.
type Timings struct {
	Group   time.Duration
	Compose time.Duration
	Layout  time.Duration
	Render  time.Duration
}

// CacheInfo tracks tile cache effectiveness.
type CacheInfo struct {
	TileHits   int
	TileMisses int
}

// Execute runs the complete group → compose → pack → render pipeline
// and writes the requested outputs.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	rep := &report.Report{
		Source: opts.Manifest,
		Packer: opts.Packer,
		PageW:  opts.PageW,
		PageH:  opts.PageH,
	}
	rep.RunID = report.NewRunID(opts.Manifest, opts.Packer,
		fmt.Sprintf("%gx%g", opts.PageW, opts.PageH))

	result := &Result{Report: rep}
	runStart := time.Now()
	observability.Pipeline().OnRunStart(ctx, rep.RunID, opts.Manifest)

	// Stage 1: group
	groupStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageGroup, opts.Manifest)
	groups, skipped, err := r.Group(ctx, opts)
	observability.Pipeline().OnStageComplete(ctx, observability.StageGroup, len(groups), time.Since(groupStart), err)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, rep.RunID, 0, time.Since(runStart), err)
		return nil, fmt.Errorf("group: %w", err)
	}
	rep.Skipped = append(rep.Skipped, skipped...)
	result.Timings.Group = time.Since(groupStart)
	result.Groups = groups
	logger.Info("grouped figures",
		"groups", len(groups),
		"skipped", len(skipped),
		"duration", result.Timings.Group)

	// Stage 2: compose
	composeStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageCompose, opts.Manifest)
	tiles, images, composeSkipped := r.Compose(ctx, groups, opts, &result.CacheInfo)
	observability.Pipeline().OnStageComplete(ctx, observability.StageCompose, len(tiles), time.Since(composeStart), nil)
	rep.Skipped = append(rep.Skipped, composeSkipped...)
	result.Timings.Compose = time.Since(composeStart)
	logger.Info("composed tiles",
		"tiles", len(tiles),
		"cache_hits", result.CacheInfo.TileHits,
		"duration", result.Timings.Compose)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: pack
	font := r.loadFont(opts, logger)
	layoutStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StagePack, opts.Packer)
	cfg := opts.layoutConfig()
	if font != nil {
		cfg.Measurer = font
	}
	packer := layout.New(opts.Packer)
	pages := packer.Pack(tiles, cfg)
	result.Timings.Layout = time.Since(layoutStart)
	observability.Pipeline().OnStageComplete(ctx, observability.StagePack, len(pages), result.Timings.Layout, nil)
	logger.Info("packed pages",
		"packer", packer.Name(),
		"pages", len(pages),
		"duration", result.Timings.Layout)

	recordPlacements(rep, groups, pages)

	// Stage 4: render and write
	renderStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageRender, strings.Join(opts.Formats, ","))
	sheets, err := r.renderSheets(ctx, pages, images, font, opts, rep)
	observability.Pipeline().OnStageComplete(ctx, observability.StageRender, len(sheets), time.Since(renderStart), err)
	if err != nil {
		observability.Pipeline().OnRunComplete(ctx, rep.RunID, 0, time.Since(runStart), err)
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "render sheets")
	}
	result.Sheets = sheets
	result.Timings.Render = time.Since(renderStart)
	logger.Info("rendered sheets",
		"sheets", len(sheets),
		"formats", opts.Formats,
		"duration", result.Timings.Render)

	rep.Finalize()

	if err := r.writeOutputs(ctx, sheets, rep, opts); err != nil {
		return nil, err
	}
	if r.Store != nil {
		if err := r.Store.Save(ctx, rep); err != nil {
			logger.Warn("report archive failed", "err", err)
		}
	}

	observability.Pipeline().OnRunComplete(ctx, rep.RunID, len(sheets), time.Since(runStart), nil)
	return result, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// loadFont resolves the caption face. Failure is not fatal: sheets
// render without captions and the log says why.
func (r *Runner) loadFont(opts Options, logger *log.Logger) *typeset.FontMeasurer {
	f, err := typeset.LoadFont(opts.Font, opts.FontSize)
	if err != nil {
		logger.Warn("no caption font available, captions disabled", "err", err)
		return nil
	}
	return f
}

// documentStem is the base name of the manifest without extension,
// used to locate the sibling markdown rendition.
func documentStem(manifestPath string) string {
	base := filepath.Base(manifestPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// recordPlacements maps packed pages back into report entries.
func recordPlacements(rep *report.Report, groups []figure.Group, pages []layout.Page) {
	byID := make(map[string]figure.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	for _, p := range pages {
		rep.Pages = append(rep.Pages, report.PageStats{
			Index:     p.Index,
			Figures:   len(p.Placements),
			FillRatio: p.FillRatio(),
		})
		for _, pl := range p.Placements {
			fig := report.Figure{
				GroupID:    pl.Tile.ID,
				Caption:    pl.Tile.Caption,
				SheetIndex: p.Index,
				X:          pl.X,
				Y:          pl.Y,
				W:          pl.W,
				H:          pl.H,
				Scale:      pl.Scale(),
			}
			if g, ok := byID[pl.Tile.ID]; ok {
				fig.SourcePage = g.PageIndex
				for _, m := range g.Members {
					if sp := m.SourcePath(); sp != "" {
						fig.Members = append(fig.Members, sp)
					}
				}
			}
			rep.Figures = append(rep.Figures, fig)
		}
	}
}

// tileImages is the group-ID to composed-image index the renderer
// draws from.
type tileImages map[string]image.Image
