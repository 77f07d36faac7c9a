package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// PNGDir writes each page as page-NNN.png inside Dir.
type PNGDir struct {
	Dir string
}

func (PNGDir) Name() string { return "png" }

func (s PNGDir) Write(pages []Page) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, p := range pages {
		path := filepath.Join(s.Dir, PageFileName(p.Index))
		if err := imaging.Save(p.Image, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// PageFileName is the canonical per-page file name shared by the PNG
// and HTML sinks.
func PageFileName(index int) string {
	return fmt.Sprintf("page-%03d.png", index+1)
}
