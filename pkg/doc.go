// Package pkg provides the core libraries for figsheet figure sheet generation.
//
// # Overview
//
// Figsheet takes a document's extraction manifest, groups the extracted
// image fragments into logical figures with their captions, and packs
// them onto fixed-size raster sheets. The pkg directory is organized
// around the four pipeline stages plus shared infrastructure:
//
//  1. [figure] - Grouping (caption validation, matching, the cascade)
//  2. [compose] - Tile composition (join fragments, strip captions)
//  3. [layout] - Page packing (hybrid, justified, masonry strategies)
//  4. [render] - Rasterization and output sinks (PNG, PDF, HTML)
//
// # Architecture
//
// The typical data flow through figsheet:
//
//	Extraction Manifest (+ optional markdown rendition)
//	         ↓
//	    [manifest] package (parse elements)
//	         ↓
//	    [figure] package (validate captions, group fragments)
//	         ↓
//	    [compose] package (one tile image per figure)
//	         ↓
//	    [layout] package (pack tiles onto pages)
//	         ↓
//	    [render] package (rasterize + write outputs)
//	         ↓
//	    PNG/PDF/HTML sheets + JSON placement report
//
// # Quick Start
//
// Run the full pipeline:
//
//	import (
//	    "context"
//	    "github.com/figsheet/figsheet/pkg/cache"
//	    "github.com/figsheet/figsheet/pkg/pipeline"
//	)
//
//	c, _ := cache.NewFileCache("/tmp/figsheet-cache")
//	runner := pipeline.NewRunner(c, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Manifest: "paper/manifest.json",
//	    Formats:  []string{"png", "json"},
//	})
//
// Or use the stages directly:
//
//	m, _ := manifest.Load("paper/manifest.json")
//	entries := figure.BuildEntries(m, nil)
//	groups := figure.GroupEntries(entries, figure.DefaultConfig())
//
// # Main Packages
//
// ## Domain Logic
//
// [manifest] - Extraction manifest parsing plus the markdown rendition
// reader used to recover caption text lost during extraction.
//
// [figure] - Caption validation, image-caption matching, and the
// cascading grouping heuristic (ordinal propagation, ordinal binding,
// vertical stacks, horizontal pairs, proximity merge).
//
// [compose] - Builds one tile image per figure group: loads member
// images, joins pairs along the better-matching axis, strips burnt-in
// caption strips, and filters rasterized-text false positives.
//
// [layout] - Packs tiles onto fixed-size pages. Three strategies
// behind one interface: hybrid (wide tiles full width, narrow ones
// paired), justified (photo-gallery rows), masonry (shortest column).
//
// [render] - Rasterizes packed pages with captions and writes them
// through output sinks (PNG directory, PDF, HTML index).
//
// [report] - The machine-readable placement report and its stores
// (pretty JSON file, MongoDB).
//
// ## Infrastructure
//
// [pipeline] - Complete run orchestration (group → compose → pack →
// render) used by both the CLI and the serve API. Ensures consistent
// behavior across entry points.
//
// [cache] - Tile cache interface with file, Redis, and null backends.
// Composed tiles are keyed by source fingerprints so edited images
// invalidate automatically.
//
// [geom] - Rectangle math shared by grouping and layout.
//
// [typeset] - Caption measurement and word wrapping behind a Measurer
// capability; the TrueType implementation finds system fonts.
//
// [errors] - Structured error codes shared by the CLI and serve API.
//
// [observability] - Optional instrumentation hooks for pipeline
// stages and cache operations.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/figure/...     # Specific package
//	go test -run Example         # Examples only
//
// [manifest]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/manifest
// [figure]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/figure
// [compose]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/compose
// [layout]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/layout
// [render]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/render
// [report]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/report
// [pipeline]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/cache
// [geom]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/geom
// [typeset]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/typeset
// [errors]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/errors
// [observability]: https://pkg.go.dev/github.com/figsheet/figsheet/pkg/observability
package pkg
