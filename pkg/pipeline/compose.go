package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/figsheet/figsheet/pkg/compose"
	"github.com/figsheet/figsheet/pkg/figure"
	"github.com/figsheet/figsheet/pkg/layout"
	"github.com/figsheet/figsheet/pkg/observability"
	"github.com/figsheet/figsheet/pkg/report"
)

// Compose runs stage 2: every group becomes one tile, cached by the
// member sources and composition options. A group that fails to
// compose is recorded as skipped and the run continues; one corrupt
// image must not sink the whole document.
func (r *Runner) Compose(ctx context.Context, groups []figure.Group, opts Options, info *CacheInfo) ([]layout.Tile, tileImages, []report.Skipped) {
	copts := compose.Options{
		BaseDir:        opts.BaseDir,
		StripCaptions:  opts.StripCaptions,
		RejectTextLike: opts.RejectTextLike,
	}
	fingerprintOpts := fmt.Sprintf("strip=%t,textlike=%t", opts.StripCaptions, opts.RejectTextLike)

	var tiles []layout.Tile
	images := make(tileImages, len(groups))
	var skipped []report.Skipped

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}

		key := r.Keyer.TileKey(g.ID, groupFingerprint(g, opts.BaseDir), fingerprintOpts)
		if !opts.Refresh {
			if img, ok := r.cachedTile(ctx, key); ok {
				info.TileHits++
				images[g.ID] = img
				tiles = append(tiles, tileFor(g, img))
				continue
			}
		}
		info.TileMisses++

		tile, err := compose.Group(g, copts)
		if err != nil {
			skipped = append(skipped, report.Skipped{
				GroupID: g.ID,
				Reason:  composeReason(err),
				Detail:  err.Error(),
			})
			continue
		}

		images[g.ID] = tile.Image
		tiles = append(tiles, tileFor(g, tile.Image))
		r.storeTile(ctx, key, tile.Image)
	}
	return tiles, images, skipped
}

func tileFor(g figure.Group, img image.Image) layout.Tile {
	b := img.Bounds()
	return layout.Tile{
		ID:      g.ID,
		W:       float64(b.Dx()),
		H:       float64(b.Dy()),
		Caption: g.Caption,
	}
}

func composeReason(err error) string {
	switch {
	case errors.Is(err, compose.ErrTextLike):
		return "text_like"
	case errors.Is(err, compose.ErrNoUsableImage):
		return "no_usable_image"
	default:
		return "compose_error"
	}
}

// groupFingerprint captures the member sources plus their sizes and
// modification times, so edited images invalidate cached tiles.
func groupFingerprint(g figure.Group, baseDir string) []string {
	var fp []string
	for _, m := range g.Members {
		sp := m.SourcePath()
		if sp == "" {
			continue
		}
		path := sp
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		if st, err := os.Stat(path); err == nil {
			fp = append(fp, fmt.Sprintf("%s:%d:%d", sp, st.Size(), st.ModTime().UnixNano()))
		} else {
			fp = append(fp, sp)
		}
	}
	return fp
}

func (r *Runner) cachedTile(ctx context.Context, key string) (image.Image, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "tile")
		return nil, false
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "tile")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "tile")
	return img, true
}

func (r *Runner) storeTile(ctx context.Context, key string, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), 0); err == nil {
		observability.Cache().OnCacheSet(ctx, "tile", buf.Len())
	}
}
