package manifest

import (
	"strings"
	"testing"
)

const sampleManifest = `[
  {"type": "image", "page_idx": 0, "bbox": [10, 10, 210, 110], "img_path": "images/fig1a.png"},
  {"type": "image", "page_idx": 0, "bbox": [10, 120, 210, 220], "img_path": "images/fig1b.png",
   "image_caption": ["", "Figure 1: overview"]},
  {"type": "text", "page_idx": 0, "bbox": [10, 225, 210, 240], "text": "Figure 1: overview"},
  {"type": "text", "page_idx": 1, "bbox": [10, 10, 210, 40], "text": "We evaluate our method on..."},
  {"type": "image", "page_idx": 1, "bbox": [0, 0, 0, 0], "img_path": "degenerate.png"},
  {"type": "equation", "page_idx": 1, "bbox": [10, 50, 210, 80], "text": "E = mc^2"}
]`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	images := m.Images()
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2 (degenerate bbox dropped)", len(images))
	}
	if images[0].SourcePath != "images/fig1a.png" {
		t.Errorf("images not in reading order: %q first", images[0].SourcePath)
	}
	if got := images[1].FirstCaption(); got != "Figure 1: overview" {
		t.Errorf("FirstCaption = %q, want first non-empty candidate", got)
	}

	caps := m.Captions()
	// Two text candidates plus one surfaced from the image's attached caption.
	if len(caps) != 3 {
		t.Fatalf("got %d caption candidates, want 3", len(caps))
	}
	for _, c := range caps {
		if c.Kind != KindCaption {
			t.Errorf("caption candidate with kind %q", c.Kind)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("{not a list}")); err == nil {
		t.Error("expected error for malformed manifest")
	}
	if _, err := Parse([]byte(`"scalar"`)); err == nil {
		t.Error("expected error for non-list manifest")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/content_list.json"); err == nil {
		t.Error("expected error for missing manifest file")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{`images\fig1.png`, "images/fig1.png"},
		{"/images/fig1.png/", "images/fig1.png"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Basename(`images\sub\fig1.png`); got != "fig1.png" {
		t.Errorf("Basename = %q", got)
	}
}

func TestParseMarkdown(t *testing.T) {
	md := `# Intro

Some prose.

## Experiments

![](images/fig2a.png)
![](images/fig2b.png)
Figure 2: results on the benchmark.

![](images/fig3.png)

No caption for the last one.
`
	entries, err := ParseMarkdown(strings.NewReader(md))
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Heading != "Experiments" || entries[2].Heading != "Experiments" {
		t.Errorf("heading tracking broken: %+v", entries)
	}
	// The shared caption line is assigned to both pending panels.
	if entries[0].Caption != entries[1].Caption || entries[0].Caption == "" {
		t.Errorf("shared caption not propagated: %+v", entries[:2])
	}
	if entries[2].Caption != "" {
		t.Errorf("trailing image should be captionless, got %q", entries[2].Caption)
	}
}
