package typeset

import (
	"fmt"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	errs "github.com/figsheet/figsheet/pkg/errors"
)

// Fonts tried in order when the configured family cannot be resolved.
var fallbackFamilies = []string{
	"DejaVuSans.ttf",
	"Arial.ttf",
	"LiberationSans-Regular.ttf",
	"FreeSans.ttf",
}

// FontMeasurer is a Measurer backed by a parsed TrueType face. It is
// safe for concurrent use.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
	size float64
}

// LoadFont resolves family through the system font paths and returns a
// measurer at the given point size. An empty family walks the fallback
// list. The returned measurer is also the renderer's text face.
func LoadFont(family string, size float64) (*FontMeasurer, error) {
	path, err := resolveFont(family)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	ft, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	face := truetype.NewFace(ft, &truetype.Options{
		Size:    size,
		Hinting: font.HintingFull,
	})
	return &FontMeasurer{face: face, size: size}, nil
}

func resolveFont(family string) (string, error) {
	candidates := fallbackFamilies
	if family != "" {
		candidates = append([]string{family}, fallbackFamilies...)
	}
	var firstErr error
	for _, name := range candidates {
		path, err := findfont.Find(name)
		if err == nil {
			return path, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", errs.Wrap(errs.ErrCodeFontNotFound, firstErr, "no usable font found")
}

// Width implements Measurer.
func (f *FontMeasurer) Width(s string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fixedToFloat(font.MeasureString(f.face, s))
}

// LineHeight implements Measurer.
func (f *FontMeasurer) LineHeight() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fixedToFloat(f.face.Metrics().Height)
}

// Size returns the point size the face was loaded at.
func (f *FontMeasurer) Size() float64 { return f.size }

// Face exposes the underlying font face for rendering. Callers must
// not use it concurrently with Width or LineHeight.
func (f *FontMeasurer) Face() font.Face { return f.face }

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
