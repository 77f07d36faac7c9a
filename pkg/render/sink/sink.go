// Package sink writes rendered sheet images to their output formats.
package sink

import "image"

// Page is one rendered sheet. Index 0 is the cover when a cover was
// rendered, otherwise the first figure sheet.
type Page struct {
	Index int
	Image image.Image
}

// Sink persists a rendered page sequence.
type Sink interface {
	Name() string
	Write(pages []Page) error
}
