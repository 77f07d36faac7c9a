package compose

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/figsheet/figsheet/pkg/figure"
)

// Caption stripping removes a caption strip that the extractor baked
// into the bottom of the image pixels. The rules are conservative:
// cropping real figure content is far worse than rendering a caption
// twice.
const (
	// stripMaxRatio caps how much of the image height may be removed.
	stripMaxRatio = 0.30

	// stripAlignSlack is how far (as a fraction of the member height)
	// the caption top may sit above the member bottom and still count
	// as baked in.
	stripAlignSlack = 0.35
)

// stripCaption crops the baked-in caption strip from a single-member
// image when the group caption's geometry overlaps the bottom of the
// member's bbox. Returns the input unchanged whenever the geometry is
// missing or the crop would be unsafe.
func stripCaption(img *image.NRGBA, m figure.Entry, g figure.Group) *image.NRGBA {
	if g.Caption == "" || g.CaptionBBox == nil || !m.HasBBox {
		return img
	}
	memberH := m.BBox.Height()
	if memberH <= 0 {
		return img
	}

	capTop := g.CaptionBBox.Y0
	// The caption must start inside the lower band of the member box.
	if capTop < m.BBox.Y1-memberH*stripAlignSlack || capTop > m.BBox.Y1 {
		return img
	}

	keepRatio := (capTop - m.BBox.Y0) / memberH
	if keepRatio <= 1-stripMaxRatio || keepRatio >= 1 {
		return img
	}

	b := img.Bounds()
	keepPx := int(float64(b.Dy()) * keepRatio)
	if keepPx < 1 || keepPx >= b.Dy() {
		return img
	}
	return imaging.Crop(img, image.Rect(0, 0, b.Dx(), keepPx))
}
