package manifest

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MarkdownEntry is one image reference found in the document's
// markdown rendition, annotated with the section heading in force at
// the point of reference and the nearest trailing caption line.
type MarkdownEntry struct {
	ImageRel string // image path as written in the markdown
	Heading  string // most recent section heading, markers stripped
	Caption  string // raw caption line, unvalidated; may be empty
}

var (
	mdImageRe   = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	mdCaptionRe = regexp.MustCompile(`(?i)(figure|fig\.?|图|table|表)\s*\d+`)
	mdHeadingRe = regexp.MustCompile(`^#+\s+`)
)

// ParseMarkdown scans a markdown document for image references. A
// caption-looking line is assigned to every image seen since the last
// caption, mirroring how extractors emit multi-panel figures as a run
// of images followed by one shared caption line.
func ParseMarkdown(r io.Reader) ([]MarkdownEntry, error) {
	var (
		entries []MarkdownEntry
		pending []int
		heading string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mdHeadingRe.MatchString(line) {
			heading = strings.TrimSpace(mdHeadingRe.ReplaceAllString(line, ""))
		}
		if m := mdImageRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, MarkdownEntry{
				ImageRel: strings.TrimSpace(m[1]),
				Heading:  heading,
			})
			pending = append(pending, len(entries)-1)
			continue
		}
		if mdCaptionRe.MatchString(line) && len(pending) > 0 {
			for _, idx := range pending {
				entries[idx].Caption = line
			}
			pending = pending[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseMarkdownFile is a convenience wrapper around [ParseMarkdown].
func ParseMarkdownFile(path string) ([]MarkdownEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMarkdown(f)
}

// FindMarkdown locates the markdown rendition inside a document
// directory: first "<stem>.md", then "full.md", then the
// lexicographically first "*.md". Returns "" when none exists.
func FindMarkdown(dir, stem string) string {
	for _, name := range []string{stem + ".md", "full.md"} {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	matches, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range matches {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}
