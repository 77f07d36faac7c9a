package sink

import (
	"bytes"
	"fmt"
	"image/png"

	"codeberg.org/go-pdf/fpdf"
)

// PDF bundles all pages into a single PDF at Path. Pages keep their
// pixel dimensions, mapped 1:1 to points.
type PDF struct {
	Path string
}

func (PDF) Name() string { return "pdf" }

func (s PDF) Write(pages []Page) error {
	if len(pages) == 0 {
		return nil
	}

	b := pages[0].Image.Bounds()
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: float64(b.Dx()), Ht: float64(b.Dy())},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for _, p := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, p.Image); err != nil {
			return fmt.Errorf("encode page %d: %w", p.Index, err)
		}
		name := fmt.Sprintf("page-%d", p.Index)
		doc.RegisterImageOptionsReader(name, opts, &buf)

		pb := p.Image.Bounds()
		doc.AddPageFormat("P", fpdf.SizeType{Wd: float64(pb.Dx()), Ht: float64(pb.Dy())})
		doc.ImageOptions(name, 0, 0, float64(pb.Dx()), float64(pb.Dy()), false, opts, 0, "")
	}

	if err := doc.OutputFileAndClose(s.Path); err != nil {
		return fmt.Errorf("write pdf %s: %w", s.Path, err)
	}
	return nil
}
