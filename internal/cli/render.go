package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/figsheet/figsheet/pkg/cache"
	"github.com/figsheet/figsheet/pkg/pipeline"
	"github.com/figsheet/figsheet/pkg/render/sink"
	"github.com/figsheet/figsheet/pkg/report"
)

// renderOpts holds the command-line flags for the render command.
// These options control grouping, composition, packing, and output.
type renderOpts struct {
	config       string   // optional TOML config file, flags override it
	out          string   // output directory
	markdownDir  string   // directory with markdown renditions for caption text
	baseDir      string   // base directory for resolving member image paths
	title        string   // document title for the cover and HTML index
	formats      []string // output formats: "png", "pdf", "html", "json"
	packer       string   // packing strategy: "hybrid", "justified", "masonry"
	pageW        float64  // sheet width in pixels
	pageH        float64  // sheet height in pixels
	margin       float64  // outer page margin in pixels
	gutter       float64  // spacing between placements in pixels
	font         string   // caption font family
	fontSize     float64  // caption point size
	captionLines int      // max wrapped caption lines per figure
	cover        bool     // prepend a cover sheet
	frames       bool     // draw thin frames around placements
	stripCap     bool     // crop burnt-in caption strips from member images
	rejectText   bool     // drop groups whose image looks like rasterized text
	allow        []string // caption/heading keywords that force group inclusion
	deny         []string // caption/heading keywords that drop a group
	keepAll      bool     // skip the decorative/too-small filter
	noCache      bool     // disable the tile cache
	refresh      bool     // recompose tiles even when cached
	redisAddr    string   // redis address for a shared tile cache
	mongoURI     string   // mongodb URI for report persistence
}

// renderCommand creates the render command, the main entry point.
//
// Default settings:
//   - packer: hybrid (wide figures full width, narrow ones paired)
//   - page: 2480x3508px (A4 at 300dpi)
//   - formats: png, json
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		packer:       pipeline.DefaultPacker,
		pageW:        pipeline.DefaultPageW,
		pageH:        pipeline.DefaultPageH,
		margin:       pipeline.DefaultMargin,
		gutter:       pipeline.DefaultGutter,
		fontSize:     pipeline.DefaultFontSize,
		captionLines: pipeline.DefaultCaptionLines,
		stripCap:     true,
		rejectText:   true,
	}

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Group a document's figures and pack them onto sheets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			manifest := ""
			if len(args) == 1 {
				manifest = args[0]
			}
			return c.runRender(cmd, manifest, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file; flags override its values")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (default \"figsheet-out\")")
	cmd.Flags().StringVar(&opts.markdownDir, "markdown-dir", "", "directory with markdown renditions for caption text")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "base directory for member image paths (default: manifest directory)")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title for the cover and HTML index")
	cmd.Flags().StringVarP(&formatsStr, "formats", "f", "", "output format(s): png (default), pdf, html, json (comma-separated)")
	cmd.Flags().StringVar(&opts.packer, "packer", opts.packer, "packing strategy: hybrid (default), justified, masonry")
	cmd.Flags().Float64Var(&opts.pageW, "page-width", opts.pageW, "sheet width in pixels")
	cmd.Flags().Float64Var(&opts.pageH, "page-height", opts.pageH, "sheet height in pixels")
	cmd.Flags().Float64Var(&opts.margin, "margin", opts.margin, "outer page margin in pixels")
	cmd.Flags().Float64Var(&opts.gutter, "gutter", opts.gutter, "spacing between placements in pixels")
	cmd.Flags().StringVar(&opts.font, "font", "", "caption font family (default: first system sans-serif found)")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", opts.fontSize, "caption point size")
	cmd.Flags().IntVar(&opts.captionLines, "caption-lines", opts.captionLines, "max wrapped caption lines per figure")
	cmd.Flags().BoolVar(&opts.cover, "cover", false, "prepend a cover sheet")
	cmd.Flags().BoolVar(&opts.frames, "frames", false, "draw thin frames around placements")
	cmd.Flags().BoolVar(&opts.stripCap, "strip-captions", opts.stripCap, "crop burnt-in caption strips from member images")
	cmd.Flags().BoolVar(&opts.rejectText, "reject-text", opts.rejectText, "drop unnumbered groups that look like rasterized text")
	cmd.Flags().StringSliceVar(&opts.allow, "allow", nil, "caption/heading keyword(s) that force a group to be kept")
	cmd.Flags().StringSliceVar(&opts.deny, "deny", nil, "caption/heading keyword(s) that drop a group")
	cmd.Flags().BoolVar(&opts.keepAll, "keep-all", false, "keep decorative and tiny groups instead of skipping them")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the tile cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompose tiles even when cached")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for a shared tile cache (e.g. localhost:6379)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "mongodb URI for report persistence")

	return cmd
}

// runRender assembles pipeline options from the config file and flags,
// builds a runner, and executes the full pipeline.
func (c *CLI) runRender(cmd *cobra.Command, manifest string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	// A directory argument opens the interactive picker.
	if info, err := os.Stat(manifest); err == nil && info.IsDir() {
		picked, err := pickManifest(manifest)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		manifest = picked
	}

	pOpts, err := buildPipelineOptions(cmd, manifest, opts)
	if err != nil {
		return err
	}
	pOpts.Logger = logger

	runner, err := c.renderRunner(ctx, opts)
	if err != nil {
		return err
	}
	if runner.Store != nil {
		defer runner.Store.Close(ctx)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", filepath.Base(pOpts.Manifest)))
	spinner.Start()

	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError(fmt.Sprintf("Render failed: %v", err))
		return err
	}
	spinner.Stop()

	printRunSummary(result, pOpts)
	return nil
}

// buildPipelineOptions loads the TOML config when given and overlays
// any flag the user set explicitly. Flag defaults only apply when no
// config file provides the value.
func buildPipelineOptions(cmd *cobra.Command, manifest string, opts *renderOpts) (pipeline.Options, error) {
	var pOpts pipeline.Options
	if opts.config != "" {
		loaded, err := pipeline.LoadConfig(opts.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		pOpts = loaded
	}

	if manifest != "" {
		pOpts.Manifest = manifest
	}

	changed := cmd.Flags().Changed
	setStr := func(name string, dst *string, v string) {
		if changed(name) || *dst == "" {
			*dst = v
		}
	}
	setStr("out", &pOpts.OutDir, opts.out)
	setStr("markdown-dir", &pOpts.MarkdownDir, opts.markdownDir)
	setStr("base-dir", &pOpts.BaseDir, opts.baseDir)
	setStr("title", &pOpts.Title, opts.title)
	setStr("packer", &pOpts.Packer, opts.packer)
	setStr("font", &pOpts.Font, opts.font)

	setF := func(name string, dst *float64, v float64) {
		if changed(name) || *dst == 0 {
			*dst = v
		}
	}
	setF("page-width", &pOpts.PageW, opts.pageW)
	setF("page-height", &pOpts.PageH, opts.pageH)
	setF("margin", &pOpts.Margin, opts.margin)
	setF("gutter", &pOpts.Gutter, opts.gutter)
	setF("font-size", &pOpts.FontSize, opts.fontSize)

	if changed("caption-lines") || pOpts.CaptionLines == 0 {
		pOpts.CaptionLines = opts.captionLines
	}
	if changed("formats") || len(pOpts.Formats) == 0 {
		pOpts.Formats = opts.formats
	}
	if changed("cover") {
		pOpts.Cover = opts.cover
	}
	if changed("frames") {
		pOpts.Frames = opts.frames
	}
	if changed("strip-captions") || opts.config == "" {
		pOpts.StripCaptions = opts.stripCap
	}
	if changed("reject-text") || opts.config == "" {
		pOpts.RejectTextLike = opts.rejectText
	}
	if changed("allow") {
		pOpts.Filter.Allow = opts.allow
	}
	if changed("deny") {
		pOpts.Filter.Deny = opts.deny
	}
	if changed("keep-all") {
		pOpts.KeepAll = opts.keepAll
	}
	if opts.refresh {
		pOpts.Refresh = true
	}

	return pOpts, nil
}

// renderRunner builds the pipeline runner for the render command,
// choosing the tile cache backend and the report store from flags.
func (c *CLI) renderRunner(ctx context.Context, opts *renderOpts) (*pipeline.Runner, error) {
	var tileCache cache.Cache
	var err error
	switch {
	case opts.noCache:
		tileCache = cache.NewNullCache()
	case opts.redisAddr != "":
		tileCache, err = cache.NewRedisCache(ctx, opts.redisAddr, "", 0)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	default:
		tileCache, err = newCache(false)
		if err != nil {
			return nil, err
		}
	}

	runner := pipeline.NewRunner(tileCache, nil, c.Logger)

	if opts.mongoURI != "" {
		store, err := report.NewMongoStore(ctx, opts.mongoURI, "figsheet", "reports")
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		runner.Store = store
	}

	return runner, nil
}

// printRunSummary prints the styled post-run summary. Defaults are
// re-applied here because Execute validates a copy of the options.
func printRunSummary(result *pipeline.Result, opts pipeline.Options) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return
	}
	rep := result.Report

	printSuccess("Packed %s onto %s",
		StyleNumber.Render(fmt.Sprintf("%d figures", rep.Stats.Placed)),
		StyleNumber.Render(fmt.Sprintf("%d sheets", len(rep.Pages))))
	printStats(rep.Stats.Placed, len(rep.Pages), result.CacheInfo.TileHits, result.CacheInfo.TileMisses)

	if len(rep.Skipped) > 0 {
		printDetail("%d fragments skipped (see report.json)", len(rep.Skipped))
	}

	for _, f := range outputFiles(result.Sheets, opts) {
		printFile(f)
	}
}

// outputFiles lists the paths written for the requested formats.
func outputFiles(sheets []sink.Page, opts pipeline.Options) []string {
	var files []string
	for _, f := range opts.Formats {
		switch f {
		case pipeline.FormatPNG:
			for i := range sheets {
				files = append(files, filepath.Join(opts.OutDir, sink.PageFileName(i)))
			}
		case pipeline.FormatPDF:
			files = append(files, filepath.Join(opts.OutDir, "sheets.pdf"))
		case pipeline.FormatHTML:
			files = append(files, filepath.Join(opts.OutDir, "index.html"))
		case pipeline.FormatJSON:
			files = append(files, filepath.Join(opts.OutDir, "report.json"))
		}
	}
	return files
}
