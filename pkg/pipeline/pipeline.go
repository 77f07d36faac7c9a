// Package pipeline wires the full figure-sheet run.
//
// This package implements the complete group → compose → pack →
// render flow shared by the CLI and the serve API. Centralizing it
// keeps both entry points behaving identically.
//
// # Architecture
//
// A run has four stages:
//
//  1. Group: read the manifest (and markdown rendition when present)
//     and cluster image fragments into logical figures
//  2. Compose: turn each figure group into one tile image
//  3. Pack: place the tiles onto fixed-size pages
//  4. Render: rasterize pages and write the requested outputs
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Manifest: "paper/manifest.json",
//	    OutDir:   "out",
//	    Formats:  []string{"png", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/figsheet/figsheet/pkg/errors"
	"github.com/figsheet/figsheet/pkg/figure"
	"github.com/figsheet/figsheet/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPageW and DefaultPageH are the sheet dimensions in
	// pixels, sized for A4 at 300dpi.
	DefaultPageW = 2480.0
	DefaultPageH = 3508.0

	// DefaultMargin and DefaultGutter are the page geometry margins
	// in pixels.
	DefaultMargin = 96.0
	DefaultGutter = 48.0

	// DefaultPacker is the packing strategy used when none is named.
	DefaultPacker = "hybrid"

	// DefaultFontSize is the caption point size.
	DefaultFontSize = 28.0

	// DefaultCaptionLines caps how many wrapped lines a caption may
	// take beneath its figure.
	DefaultCaptionLines = 3
)

// Output format constants.
const (
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatPDF:  true,
	FormatHTML: true,
	FormatJSON: true,
}

// ValidPackers is the set of packing strategies.
var ValidPackers = map[string]bool{
	"hybrid":    true,
	"justified": true,
	"masonry":   true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. The struct serializes to JSON
// for serve API requests and loads from TOML config files.
type Options struct {
	// Input options
	Manifest    string `json:"manifest" toml:"manifest"`
	MarkdownDir string `json:"markdown_dir,omitempty" toml:"markdown_dir"`
	BaseDir     string `json:"base_dir,omitempty" toml:"base_dir"`
	Title       string `json:"title,omitempty" toml:"title"`

	// Grouping options
	Grouping figure.Config `json:"grouping,omitempty" toml:"grouping"`
	Filter   figure.Filter `json:"filter,omitempty" toml:"filter"`
	KeepAll  bool          `json:"keep_all,omitempty" toml:"keep_all"`

	// Compose options
	StripCaptions  bool `json:"strip_captions,omitempty" toml:"strip_captions"`
	RejectTextLike bool `json:"reject_text_like,omitempty" toml:"reject_text_like"`

	// Layout options
	Packer       string  `json:"packer,omitempty" toml:"packer"`
	PageW        float64 `json:"page_width,omitempty" toml:"page_width"`
	PageH        float64 `json:"page_height,omitempty" toml:"page_height"`
	Margin       float64 `json:"margin,omitempty" toml:"margin"`
	Gutter       float64 `json:"gutter,omitempty" toml:"gutter"`
	CaptionLines int     `json:"caption_lines,omitempty" toml:"caption_lines"`

	// Render options
	Font     string   `json:"font,omitempty" toml:"font"`
	FontSize float64  `json:"font_size,omitempty" toml:"font_size"`
	Cover    bool     `json:"cover,omitempty" toml:"cover"`
	Frames   bool     `json:"frames,omitempty" toml:"frames"`
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	OutDir   string   `json:"out_dir,omitempty" toml:"out_dir"`

	// Refresh bypasses the tile cache.
	Refresh bool `json:"refresh,omitempty" toml:"refresh"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults ran.
	validated bool `json:"-" toml:"-"`
}

// ValidateFormat checks one output format name.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, pdf, html, json)", format)
	}
	return nil
}

// ValidateFormats checks every requested format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePacker checks a packing strategy name.
func ValidatePacker(name string) error {
	if !ValidPackers[name] {
		return errs.New(errs.ErrCodeInvalidPacker, "invalid packer: %q (must be one of: hybrid, justified, masonry)", name)
	}
	return nil
}

// remoteManifest reports whether path is an http(s) URL rather than a
// local file. Remote manifests need an explicit BaseDir because member
// images are never fetched over the network.
func remoteManifest(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Manifest == "" {
		return errs.New(errs.ErrCodeInvalidManifest, "manifest is required")
	}
	if err := errs.ValidateManifestPath(o.Manifest); err != nil {
		return err
	}
	if o.BaseDir == "" {
		if remoteManifest(o.Manifest) {
			return errs.New(errs.ErrCodeInvalidInput, "base_dir is required for a remote manifest")
		}
		o.BaseDir = filepath.Dir(o.Manifest)
	}

	if o.Packer == "" {
		o.Packer = DefaultPacker
	}
	if err := ValidatePacker(o.Packer); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG, FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.PageW <= 0 {
		o.PageW = DefaultPageW
	}
	if o.PageH <= 0 {
		o.PageH = DefaultPageH
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.Gutter <= 0 {
		o.Gutter = DefaultGutter
	}
	if o.CaptionLines <= 0 {
		o.CaptionLines = DefaultCaptionLines
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Grouping == (figure.Config{}) {
		o.Grouping = figure.DefaultConfig()
	}
	if len(o.Filter.Allow) == 0 && len(o.Filter.Deny) == 0 {
		o.Filter = figure.DefaultFilter()
	}
	if o.OutDir == "" {
		o.OutDir = "figsheet-out"
	}
	if err := errs.ValidateOutDir(o.OutDir); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// layoutConfig maps the options onto the packer configuration. The
// measurer is injected by the runner once the font is loaded.
func (o *Options) layoutConfig() layout.Config {
	cfg := layout.DefaultConfig(nil)
	cfg.PageW = o.PageW
	cfg.PageH = o.PageH
	cfg.Margin = o.Margin
	cfg.Gutter = o.Gutter
	cfg.CaptionMaxLines = o.CaptionLines
	return cfg
}
