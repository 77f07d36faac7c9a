package figure

import (
	"testing"

	"github.com/figsheet/figsheet/pkg/geom"
	"github.com/figsheet/figsheet/pkg/manifest"
)

func img(page int, x0, y0, x1, y1 float64) manifest.Element {
	return manifest.Element{
		PageIndex: page,
		BBox:      geom.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1},
		Kind:      manifest.KindImage,
	}
}

func cap(page int, x0, y0, x1, y1 float64, text string) manifest.Element {
	return manifest.Element{
		PageIndex: page,
		BBox:      geom.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1},
		Kind:      manifest.KindCaption,
		Text:      text,
	}
}

func TestMatchCaptionsNearestBelow(t *testing.T) {
	images := []manifest.Element{img(0, 100, 100, 500, 400)}
	captions := []manifest.Element{
		cap(0, 100, 410, 500, 430, "Figure 1: close"),
		cap(0, 100, 600, 500, 620, "Figure 2: far"),
	}

	got := MatchCaptions(images, captions)
	if len(got) != 1 {
		t.Fatalf("matched %d images, want 1", len(got))
	}
	if got[0].Text != "Figure 1: close" {
		t.Errorf("matched %q, want the nearer caption", got[0].Text)
	}
}

func TestMatchCaptionsOverlapBeatsGap(t *testing.T) {
	// The wider-overlapping caption wins despite sitting slightly
	// lower, because overlap is worth ten points of vertical gap.
	images := []manifest.Element{img(0, 100, 100, 500, 400)}
	captions := []manifest.Element{
		cap(0, 400, 402, 900, 420, "Figure 1: sliver"),
		cap(0, 100, 408, 500, 426, "Figure 2: aligned"),
	}

	got := MatchCaptions(images, captions)
	if got[0].Text != "Figure 2: aligned" {
		t.Errorf("matched %q, want the well-aligned caption", got[0].Text)
	}
}

func TestMatchCaptionsBakedInBand(t *testing.T) {
	// Extractors sometimes include the caption pixels in the image
	// crop, so the caption element's top sits inside the image box.
	// It must still match as long as it stays in the lower band.
	images := []manifest.Element{img(0, 100, 100, 500, 400)}
	captions := []manifest.Element{
		cap(0, 100, 360, 500, 420, "Figure 1: baked in"),
	}

	got := MatchCaptions(images, captions)
	if len(got) != 1 || got[0].Text != "Figure 1: baked in" {
		t.Fatalf("matched %v, want the overlapping caption", got)
	}
}

func TestMatchCaptionsRejections(t *testing.T) {
	images := []manifest.Element{img(0, 100, 100, 500, 400)}
	tests := []struct {
		name string
		cap  manifest.Element
	}{
		{"above image", cap(0, 100, 50, 500, 80, "Figure 1")},
		{"other page", cap(1, 100, 410, 500, 430, "Figure 1")},
		{"no horizontal overlap", cap(0, 600, 410, 900, 430, "Figure 1")},
		{"overlap below threshold", cap(0, 460, 410, 900, 430, "Figure 1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchCaptions(images, []manifest.Element{tt.cap})
			if len(got) != 0 {
				t.Errorf("caption matched, want no match")
			}
		})
	}
}
