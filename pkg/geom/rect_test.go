package geom

import (
	"encoding/json"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHorizontalOverlapSelf(t *testing.T) {
	rects := []Rect{
		{0, 0, 10, 10},
		{10, 10, 210, 110},
		{-5, 2, -1, 8},
		{0.1, 0, 0.9, 1},
	}
	for _, r := range rects {
		if got := HorizontalOverlap(r, r); !almostEqual(got, 1.0) {
			t.Errorf("HorizontalOverlap(%v, %v) = %v, want 1.0", r, r, got)
		}
	}
}

func TestHorizontalOverlapSymmetric(t *testing.T) {
	a := Rect{0, 0, 100, 50}
	b := Rect{40, 60, 90, 80}
	if got, rev := HorizontalOverlap(a, b), HorizontalOverlap(b, a); !almostEqual(got, rev) {
		t.Errorf("HorizontalOverlap not symmetric: %v vs %v", got, rev)
	}
	// Intersection width 50, min width 50 -> full overlap of the narrower rect.
	if got := HorizontalOverlap(a, b); !almostEqual(got, 1.0) {
		t.Errorf("HorizontalOverlap = %v, want 1.0", got)
	}
}

func TestHorizontalOverlapDisjoint(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{20, 0, 30, 10}
	if got := HorizontalOverlap(a, b); got != 0 {
		t.Errorf("disjoint overlap = %v, want 0", got)
	}
}

func TestGaps(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Rect
		vgap, hgap float64
	}{
		{"stacked", Rect{0, 0, 10, 10}, Rect{0, 15, 10, 25}, 5, 0},
		{"stacked reversed", Rect{0, 15, 10, 25}, Rect{0, 0, 10, 10}, 5, 0},
		{"side by side", Rect{0, 0, 10, 10}, Rect{12, 0, 22, 10}, 0, 2},
		{"touching", Rect{0, 0, 10, 10}, Rect{0, 10, 10, 20}, 0, 0},
		{"overlapping", Rect{0, 0, 10, 10}, Rect{5, 5, 15, 15}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerticalGap(tt.a, tt.b); !almostEqual(got, tt.vgap) {
				t.Errorf("VerticalGap = %v, want %v", got, tt.vgap)
			}
			if got := HorizontalGap(tt.a, tt.b); !almostEqual(got, tt.hgap) {
				t.Errorf("HorizontalGap = %v, want %v", got, tt.hgap)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	a := Rect{0, 0, 100, 40}
	b := Rect{10, 50, 110, 100}
	if got := WidthSimilarity(a, b); !almostEqual(got, 1.0) {
		t.Errorf("WidthSimilarity equal widths = %v, want 1.0", got)
	}
	c := Rect{0, 0, 50, 40}
	if got := WidthSimilarity(a, c); !almostEqual(got, 0.5) {
		t.Errorf("WidthSimilarity half width = %v, want 0.5", got)
	}
	if got := HeightSimilarity(a, c); !almostEqual(got, 1.0) {
		t.Errorf("HeightSimilarity equal heights = %v, want 1.0", got)
	}
	degenerate := Rect{0, 0, 0, 10}
	if got := WidthSimilarity(a, degenerate); got != 0 {
		t.Errorf("WidthSimilarity with degenerate = %v, want 0", got)
	}
}

func TestUnion(t *testing.T) {
	a := Rect{0, 5, 10, 10}
	b := Rect{5, 0, 20, 8}
	want := Rect{0, 0, 20, 10}
	if got := a.Union(b); got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}

	u, ok := UnionAll([]Rect{a, b})
	if !ok || u != want {
		t.Errorf("UnionAll = %v, %v; want %v, true", u, ok, want)
	}
	if _, ok := UnionAll(nil); ok {
		t.Error("UnionAll(nil) should report false")
	}
}

func TestRectJSONRoundTrip(t *testing.T) {
	r := Rect{10, 20, 110, 220}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[10,20,110,220]" {
		t.Errorf("Marshal = %s", data)
	}
	var back Rect
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != r {
		t.Errorf("round trip = %v, want %v", back, r)
	}
}

func TestRectJSONInvalid(t *testing.T) {
	var r Rect
	if err := json.Unmarshal([]byte("[1,2,3]"), &r); err == nil {
		t.Error("expected error for 3-element bbox")
	}
	if err := json.Unmarshal([]byte(`"nope"`), &r); err == nil {
		t.Error("expected error for non-array bbox")
	}
}
