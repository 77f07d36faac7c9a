package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML writes the page images plus an index.html album that shows
// them in order. The album is a static file with no script.
type HTML struct {
	Dir   string
	Title string
}

func (HTML) Name() string { return "html" }

const htmlStyle = `body { margin: 0; background: #555; font-family: sans-serif; }
h1 { color: #eee; text-align: center; padding: 16px 0 0; font-weight: normal; }
.sheet { display: block; margin: 24px auto; max-width: 92vw; box-shadow: 0 2px 12px rgba(0,0,0,.5); }`

func (s HTML) Write(pages []Page) error {
	if err := (PNGDir{Dir: s.Dir}).Write(pages); err != nil {
		return err
	}

	doc := buildAlbum(s.Title, pages)
	path := filepath.Join(s.Dir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := html.Render(f, doc); err != nil {
		return fmt.Errorf("render album: %w", err)
	}
	return nil
}

func buildAlbum(title string, pages []Page) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := elem(atom.Html, "html")
	doc.AppendChild(root)

	head := elem(atom.Head, "head")
	root.AppendChild(head)

	meta := elem(atom.Meta, "meta")
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)

	if title != "" {
		tn := elem(atom.Title, "title")
		tn.AppendChild(text(title))
		head.AppendChild(tn)
	}

	style := elem(atom.Style, "style")
	style.AppendChild(text(htmlStyle))
	head.AppendChild(style)

	body := elem(atom.Body, "body")
	root.AppendChild(body)

	if title != "" {
		h1 := elem(atom.H1, "h1")
		h1.AppendChild(text(title))
		body.AppendChild(h1)
	}

	for _, p := range pages {
		img := elem(atom.Img, "img")
		img.Attr = []html.Attribute{
			{Key: "class", Val: "sheet"},
			{Key: "src", Val: PageFileName(p.Index)},
			{Key: "alt", Val: fmt.Sprintf("sheet %d", p.Index+1)},
		}
		body.AppendChild(img)
	}
	return doc
}

func elem(a atom.Atom, name string) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: name}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
