package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/figsheet/figsheet/pkg/cache"
	"github.com/figsheet/figsheet/pkg/report"
)

// writeDocument lays out a small two-panel document: two stacked
// image fragments sharing one numbered caption.
func writeDocument(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()

	imgDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"f1a.png", "f1b.png"} {
		img := imaging.New(400, 200, color.NRGBA{R: 30, G: 140, B: 90, A: 255})
		if err := imaging.Save(img, filepath.Join(imgDir, name)); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	manifest := `[
		{"type": "image", "page_idx": 0, "bbox": [100, 100, 500, 300], "img_path": "images/f1a.png"},
		{"type": "image", "page_idx": 0, "bbox": [100, 320, 500, 520], "img_path": "images/f1b.png"},
		{"type": "text", "page_idx": 0, "bbox": [100, 530, 500, 560], "text": "Figure 1: two panel overview"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "doc.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testOptions(dir string) Options {
	return Options{
		Manifest: filepath.Join(dir, "doc.json"),
		BaseDir:  dir,
		OutDir:   filepath.Join(dir, "out"),
		Formats:  []string{FormatPNG, FormatJSON},
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	dir := writeDocument(t)
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), testOptions(dir))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want the two fragments merged into 1", len(result.Groups))
	}
	if got := result.Groups[0].ID; got != "p0-m1" {
		t.Errorf("group ID = %q, want p0-m1", got)
	}
	if len(result.Sheets) == 0 {
		t.Fatal("no sheets rendered")
	}

	rep := result.Report
	if len(rep.Figures) != 1 {
		t.Fatalf("report has %d figures, want 1", len(rep.Figures))
	}
	fig := rep.Figures[0]
	if fig.GroupID != "p0-m1" || len(fig.Members) != 2 {
		t.Errorf("figure = %+v, want both members under p0-m1", fig)
	}
	if fig.Scale > 1.0+1e-9 {
		t.Errorf("figure upscaled to %v", fig.Scale)
	}
	if rep.Stats.Placed != 1 || rep.Stats.Groups != 1 {
		t.Errorf("stats = %+v", rep.Stats)
	}

	// The PNG and JSON sinks must have written.
	if _, err := os.Stat(filepath.Join(dir, "out", "page-001.png")); err != nil {
		t.Errorf("missing page image: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", "report.json"))
	if err != nil {
		t.Fatalf("missing report: %v", err)
	}
	var onDisk report.Report
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("report not valid JSON: %v", err)
	}
	if onDisk.RunID != rep.RunID {
		t.Error("written report run ID differs from result")
	}
}

func TestExecuteDeterministicRunID(t *testing.T) {
	dir := writeDocument(t)
	runner := NewRunner(nil, nil, nil)

	a, err := runner.Execute(context.Background(), testOptions(dir))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := runner.Execute(context.Background(), testOptions(dir))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Report.RunID != b.Report.RunID {
		t.Errorf("run IDs differ: %s vs %s", a.Report.RunID, b.Report.RunID)
	}
}

// Rerunning an unchanged manifest must write byte-identical artifacts,
// cover page included.
func TestExecuteRerunBytesIdentical(t *testing.T) {
	dir := writeDocument(t)
	runner := NewRunner(nil, nil, nil)

	run := func(out string) string {
		opts := testOptions(dir)
		opts.OutDir = filepath.Join(dir, out)
		opts.Cover = true
		if _, err := runner.Execute(context.Background(), opts); err != nil {
			t.Fatalf("run into %s: %v", out, err)
		}
		return opts.OutDir
	}
	first := run("out-a")
	second := run("out-b")

	// With the cover enabled the cover raster is page-001 and the
	// content page is page-002.
	for _, name := range []string{"report.json", "page-001.png", "page-002.png"} {
		a, err := os.ReadFile(filepath.Join(first, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(second, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestExecuteTileCache(t *testing.T) {
	dir := writeDocument(t)
	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)

	first, err := runner.Execute(context.Background(), testOptions(dir))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheInfo.TileHits != 0 || first.CacheInfo.TileMisses == 0 {
		t.Errorf("first run cache info = %+v, want all misses", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), testOptions(dir))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.CacheInfo.TileHits == 0 {
		t.Errorf("second run cache info = %+v, want tile hits", second.CacheInfo)
	}

	// Refresh bypasses the cache.
	opts := testOptions(dir)
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if third.CacheInfo.TileHits != 0 {
		t.Errorf("refresh run hit the cache: %+v", third.CacheInfo)
	}
}

func TestExecuteProseCaptionRejected(t *testing.T) {
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	img := imaging.New(400, 300, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	if err := imaging.Save(img, filepath.Join(imgDir, "fig.png")); err != nil {
		t.Fatal(err)
	}

	// The text element is body prose, not a numbered caption.
	manifest := `[
		{"type": "image", "page_idx": 0, "bbox": [100, 100, 500, 400], "img_path": "images/fig.png"},
		{"type": "text", "page_idx": 0, "bbox": [100, 410, 500, 440], "text": "We evaluate our method on several benchmarks and observe strong results."}
	]`
	if err := os.WriteFile(filepath.Join(dir, "doc.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), testOptions(dir))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if got := result.Groups[0].Caption; got != "" {
		t.Errorf("caption = %q, want prose rejected", got)
	}
	if got := result.Report.Figures[0].Caption; got != "" {
		t.Errorf("report caption = %q, want empty", got)
	}
}

func TestExecuteMissingManifest(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Manifest: "/nonexistent/doc.json"})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("empty options validated")
	}

	opts = Options{Manifest: filepath.Join("papers", "doc.json")}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.BaseDir != "papers" {
		t.Errorf("base dir = %q, want manifest directory", opts.BaseDir)
	}
	if opts.Packer != DefaultPacker {
		t.Errorf("packer = %q", opts.Packer)
	}
	if opts.PageW != DefaultPageW || opts.PageH != DefaultPageH {
		t.Errorf("page = %gx%g", opts.PageW, opts.PageH)
	}
	if len(opts.Formats) != 2 {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Grouping.StackVGapRatio == 0 {
		t.Error("grouping defaults not applied")
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}

	bad := Options{Manifest: "doc.json", Packer: "diagonal"}
	if err := bad.ValidateAndSetDefaults(); err == nil || !strings.Contains(err.Error(), "invalid packer") {
		t.Errorf("err = %v, want invalid packer", err)
	}

	bad = Options{Manifest: "doc.json", Formats: []string{"gif"}}
	if err := bad.ValidateAndSetDefaults(); err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("err = %v, want invalid format", err)
	}

	bad = Options{Manifest: "https://example.com/doc.json"}
	if err := bad.ValidateAndSetDefaults(); err == nil || !strings.Contains(err.Error(), "base_dir") {
		t.Errorf("err = %v, want base_dir required", err)
	}

	remote := Options{Manifest: "https://example.com/doc.json", BaseDir: "/tmp/doc"}
	if err := remote.ValidateAndSetDefaults(); err != nil {
		t.Errorf("remote manifest with base_dir rejected: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "figsheet.toml")
	content := `manifest = "doc.json"
packer = "masonry"
page_width = 1000.0
formats = ["png", "pdf"]

[grouping]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if opts.Manifest != "doc.json" || opts.Packer != "masonry" || opts.PageW != 1000 {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.Formats) != 2 || opts.Formats[1] != "pdf" {
		t.Errorf("formats = %v", opts.Formats)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "figsheet.toml")
	if err := os.WriteFile(path, []byte("manifest = \"x\"\nbogus = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("err = %v, want unknown key", err)
	}
}
