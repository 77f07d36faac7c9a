package figure

import (
	"github.com/figsheet/figsheet/pkg/geom"
	"github.com/figsheet/figsheet/pkg/manifest"
)

// Caption matching thresholds. A caption must sit at the image's
// bottom edge or below it on the same page with at least this much
// horizontal overlap; among candidates the score prefers small
// vertical gaps and rewards overlap. The top of the caption may reach
// into the lower band of the image box, which happens when the
// extractor baked the caption pixels into the image crop.
const (
	matchMinOverlap   = 0.2
	matchOverlapBonus = 10.0
	matchBottomBand   = 0.35
)

// MatchCaptions pairs each image element with the most plausible
// caption element on the same page, keyed by the image's position in
// images. An image with no plausible caption is simply absent from the
// result; that is a valid outcome, not an error.
//
// The search is O(images × captions) per page, which is fine at the
// tens-of-elements scale manifests have in practice.
func MatchCaptions(images, captions []manifest.Element) map[int]manifest.Element {
	matched := make(map[int]manifest.Element)
	for i, img := range images {
		best, ok := bestCaption(img, captions)
		if ok {
			matched[i] = best
		}
	}
	return matched
}

func bestCaption(img manifest.Element, captions []manifest.Element) (manifest.Element, bool) {
	var (
		best      manifest.Element
		bestScore float64
		found     bool
	)
	for _, cap := range captions {
		if cap.PageIndex != img.PageIndex {
			continue
		}
		// Caption top must not be above the image's lower band.
		if cap.BBox.Y0 < img.BBox.Y1-img.BBox.Height()*matchBottomBand {
			continue
		}
		overlap := geom.HorizontalOverlap(img.BBox, cap.BBox)
		if overlap < matchMinOverlap {
			continue
		}
		score := (cap.BBox.Y0 - img.BBox.Y1) - matchOverlapBonus*overlap
		if !found || score < bestScore {
			best, bestScore, found = cap, score, true
		}
	}
	return best, found
}
