package compose

import (
	"image"

	"github.com/disintegration/imaging"
)

// Text detection classifies a tile as rendered text when its
// grayscale histogram concentrates in very few bins (flat background
// plus one ink tone) and its horizontal edge density sits in the band
// characteristic of text lines. Figures have richer histograms or far
// sparser edges.
const (
	textProbeSize = 256

	textHistTopBins  = 8
	textHistMinShare = 0.85

	textEdgeThreshold = 32
	textEdgeMin       = 0.02
	textEdgeMax       = 0.30
)

// looksLikeText reports whether img is probably a rasterized text
// block rather than a figure.
func looksLikeText(img image.Image) bool {
	probe := imaging.Grayscale(imaging.Resize(img, textProbeSize, textProbeSize, imaging.Box))

	var hist [256]int
	total := 0
	for y := 0; y < textProbeSize; y++ {
		for x := 0; x < textProbeSize; x++ {
			hist[probe.NRGBAAt(x, y).R]++
			total++
		}
	}
	if total == 0 {
		return false
	}

	if histShare(hist[:], textHistTopBins, total) < textHistMinShare {
		return false
	}

	density := edgeDensity(probe)
	return density >= textEdgeMin && density <= textEdgeMax
}

// histShare returns the mass of the top n histogram bins.
func histShare(hist []int, n, total int) float64 {
	top := make([]int, n)
	for _, count := range hist {
		// Insert into the running top-n without sorting the whole
		// histogram.
		for i := 0; i < n; i++ {
			if count > top[i] {
				count, top[i] = top[i], count
			}
		}
	}
	sum := 0
	for _, c := range top {
		sum += c
	}
	return float64(sum) / float64(total)
}

// edgeDensity is the fraction of horizontally adjacent pixel pairs
// whose luminance jumps by more than the threshold.
func edgeDensity(probe *image.NRGBA) float64 {
	edges, pairs := 0, 0
	for y := 0; y < textProbeSize; y++ {
		for x := 1; x < textProbeSize; x++ {
			a := int(probe.NRGBAAt(x-1, y).R)
			b := int(probe.NRGBAAt(x, y).R)
			d := a - b
			if d < 0 {
				d = -d
			}
			if d > textEdgeThreshold {
				edges++
			}
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(edges) / float64(pairs)
}
