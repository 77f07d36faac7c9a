// Package geom provides axis-aligned bounding-box arithmetic for
// document-coordinate geometry.
//
// All functions are pure and operate on [Rect] values. A Rect uses the
// manifest convention [x0,y0,x1,y1] with the origin at the top-left of
// the page: x grows rightward, y grows downward, so Y0 is the top edge
// and Y1 the bottom edge.
package geom

import (
	"encoding/json"
	"fmt"
	"math"
)

// Rect is an axis-aligned bounding box in document coordinates.
// A well-formed Rect satisfies X0 < X1 and Y0 < Y1.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal span of the rect.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical span of the rect.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rect has no positive area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// UnionAll returns the union of all rects, or the zero Rect and false
// when the slice is empty.
func UnionAll(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u = u.Union(r)
	}
	return u, true
}

// HorizontalOverlap returns the width of the intersection of a and b
// divided by the smaller of the two widths. The result is in [0,1] for
// well-formed rects: 1 means the narrower rect is fully covered
// horizontally. Degenerate rects yield 0. The function is symmetric.
func HorizontalOverlap(a, b Rect) float64 {
	inter := math.Min(a.X1, b.X1) - math.Max(a.X0, b.X0)
	if inter <= 0 {
		return 0
	}
	denom := math.Min(a.Width(), b.Width())
	if denom <= 0 {
		return 0
	}
	return inter / denom
}

// VerticalOverlap is [HorizontalOverlap] rotated 90 degrees: the height
// of the intersection divided by the smaller of the two heights.
func VerticalOverlap(a, b Rect) float64 {
	inter := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	if inter <= 0 {
		return 0
	}
	denom := math.Min(a.Height(), b.Height())
	if denom <= 0 {
		return 0
	}
	return inter / denom
}

// VerticalGap returns the distance between the facing horizontal edges
// of a and b, or 0 when they overlap vertically. The function is
// symmetric: the order of arguments does not matter.
func VerticalGap(a, b Rect) float64 {
	switch {
	case b.Y0 >= a.Y1:
		return b.Y0 - a.Y1
	case a.Y0 >= b.Y1:
		return a.Y0 - b.Y1
	}
	return 0
}

// HorizontalGap returns the distance between the facing vertical edges
// of a and b, or 0 when they overlap horizontally. Symmetric.
func HorizontalGap(a, b Rect) float64 {
	switch {
	case b.X0 >= a.X1:
		return b.X0 - a.X1
	case a.X0 >= b.X1:
		return a.X0 - b.X1
	}
	return 0
}

// WidthSimilarity returns 1 - |w1-w2|/max(w1,w2), a value in [0,1]
// where 1 means identical widths. Degenerate rects yield 0.
func WidthSimilarity(a, b Rect) float64 {
	return spanSimilarity(a.Width(), b.Width())
}

// HeightSimilarity returns 1 - |h1-h2|/max(h1,h2), a value in [0,1]
// where 1 means identical heights. Degenerate rects yield 0.
func HeightSimilarity(a, b Rect) float64 {
	return spanSimilarity(a.Height(), b.Height())
}

func spanSimilarity(s1, s2 float64) float64 {
	if s1 <= 0 || s2 <= 0 {
		return 0
	}
	return 1 - math.Abs(s1-s2)/math.Max(s1, s2)
}

// MarshalJSON encodes the rect as the manifest array form [x0,y0,x1,y1].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON decodes the manifest array form [x0,y0,x1,y1].
func (r *Rect) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 4 {
		return fmt.Errorf("bbox must have 4 coordinates, got %d", len(coords))
	}
	r.X0, r.Y0, r.X1, r.Y1 = coords[0], coords[1], coords[2], coords[3]
	return nil
}
