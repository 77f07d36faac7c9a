// Package compose turns a figure group into a single tile image.
//
// Composition reads the member images from disk, optionally strips a
// caption strip baked into the pixels, and joins multi-member groups
// into one canvas. The output tile is what the packer places on pages.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	errs "github.com/figsheet/figsheet/pkg/errors"
	"github.com/figsheet/figsheet/pkg/figure"
	"github.com/figsheet/figsheet/pkg/geom"
)

// ErrNoUsableImage is returned when no member image could be opened.
var ErrNoUsableImage = errs.New(errs.ErrCodeComposeFailed, "compose: no usable member image")

// ErrTextLike is returned when the composed result looks like
// rasterized text rather than a figure.
var ErrTextLike = errs.New(errs.ErrCodeComposeFailed, "compose: image looks like rendered text")

// Layout constants for joined tiles.
const (
	memberSpacing = 10   // pixels between joined members
	padRatio      = 0.05 // whitespace around a single stripped member
	joinSimMin    = 0.8  // extent similarity required to stack or row
)

// Options controls composition.
type Options struct {
	// BaseDir anchors relative member paths.
	BaseDir string

	// StripCaptions removes caption strips baked into single-member
	// images when the group has a trusted caption with geometry.
	StripCaptions bool

	// RejectTextLike drops composed tiles that fail the text
	// heuristic. Groups with a parsed figure number are exempt.
	RejectTextLike bool
}

// Tile is a composed figure image ready for page layout.
type Tile struct {
	GroupID string
	Image   *image.NRGBA
	Caption string

	// Members is how many group members contributed pixels.
	Members int
}

// Group composes a figure group into one tile. Groups with more than
// two members fall back to the first member alone; joining three or
// more fragments reliably produces worse tiles than showing the
// primary panel.
func Group(g figure.Group, opts Options) (*Tile, error) {
	members := g.Members
	if len(members) > 2 {
		members = members[:1]
	}

	var imgs []*image.NRGBA
	for _, m := range members {
		img, err := loadMember(m, opts.BaseDir)
		if err != nil {
			continue
		}
		if opts.StripCaptions && len(members) == 1 {
			img = stripCaption(img, m, g)
		}
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return nil, fmt.Errorf("%w: group %s", ErrNoUsableImage, g.ID)
	}

	var canvas *image.NRGBA
	switch len(imgs) {
	case 1:
		canvas = pad(imgs[0], padRatio)
	case 2:
		canvas = joinPair(imgs[0], imgs[1], members)
	}

	if opts.RejectTextLike && !hasOrdinal(g) && looksLikeText(canvas) {
		return nil, fmt.Errorf("%w: group %s", ErrTextLike, g.ID)
	}

	return &Tile{
		GroupID: g.ID,
		Image:   canvas,
		Caption: g.Caption,
		Members: len(imgs),
	}, nil
}

func hasOrdinal(g figure.Group) bool {
	for _, m := range g.Members {
		if m.HasOrdinal {
			return true
		}
	}
	return false
}

func loadMember(m figure.Entry, baseDir string) (*image.NRGBA, error) {
	path := m.SourcePath()
	if path == "" {
		return nil, ErrNoUsableImage
	}
	if err := errs.ValidateMemberPath(path); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errs.Wrap(errs.ErrCodeImageNotFound, err, "member image %s", path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeComposeFailed, err, "decode %s", path)
	}
	return imaging.Clone(img), nil
}

// joinPair stacks vertically when the members' page widths agree,
// joins horizontally when their heights agree, and falls back to a
// vertical grid otherwise. Images are resized to the shared extent so
// seams line up.
func joinPair(a, b *image.NRGBA, members []figure.Entry) *image.NRGBA {
	var similarW, similarH float64
	if len(members) == 2 && members[0].HasBBox && members[1].HasBBox {
		similarW = geom.WidthSimilarity(members[0].BBox, members[1].BBox)
		similarH = geom.HeightSimilarity(members[0].BBox, members[1].BBox)
	} else {
		similarW = pixelSimilarity(a.Bounds().Dx(), b.Bounds().Dx())
		similarH = pixelSimilarity(a.Bounds().Dy(), b.Bounds().Dy())
	}

	switch {
	case similarW > joinSimMin && similarW >= similarH:
		return stackVertical(a, b)
	case similarH > joinSimMin:
		return stackHorizontal(a, b)
	default:
		return stackVertical(a, b)
	}
}

func pixelSimilarity(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	fa, fb := float64(a), float64(b)
	if fa > fb {
		fa, fb = fb, fa
	}
	return 1 - (fb-fa)/fb
}

func stackVertical(a, b *image.NRGBA) *image.NRGBA {
	width := a.Bounds().Dx()
	if b.Bounds().Dx() < width {
		width = b.Bounds().Dx()
	}
	a = imaging.Resize(a, width, 0, imaging.Lanczos)
	b = imaging.Resize(b, width, 0, imaging.Lanczos)

	h := a.Bounds().Dy() + memberSpacing + b.Bounds().Dy()
	canvas := imaging.New(width, h, color.White)
	canvas = imaging.Paste(canvas, a, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, b, image.Pt(0, a.Bounds().Dy()+memberSpacing))
	return canvas
}

func stackHorizontal(a, b *image.NRGBA) *image.NRGBA {
	height := a.Bounds().Dy()
	if b.Bounds().Dy() < height {
		height = b.Bounds().Dy()
	}
	a = imaging.Resize(a, 0, height, imaging.Lanczos)
	b = imaging.Resize(b, 0, height, imaging.Lanczos)

	w := a.Bounds().Dx() + memberSpacing + b.Bounds().Dx()
	canvas := imaging.New(w, height, color.White)
	canvas = imaging.Paste(canvas, a, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, b, image.Pt(a.Bounds().Dx()+memberSpacing, 0))
	return canvas
}

// pad surrounds img with a uniform white margin proportional to its
// shorter side.
func pad(img *image.NRGBA, ratio float64) *image.NRGBA {
	if ratio <= 0 {
		return img
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	short := w
	if h < short {
		short = h
	}
	m := int(float64(short) * ratio)
	canvas := imaging.New(w+2*m, h+2*m, color.White)
	return imaging.Paste(canvas, img, image.Pt(m, m))
}
