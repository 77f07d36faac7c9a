// Package typeset wraps caption text to a pixel width using real font
// metrics.
//
// All measurement goes through the Measurer interface so layout code
// can be tested without loading a font, and so the packer never touches
// freetype directly.
package typeset

import "strings"

// Measurer reports rendered text metrics for one font at one size.
type Measurer interface {
	// Width returns the advance width of s in pixels.
	Width(s string) float64

	// LineHeight returns the baseline-to-baseline distance in pixels.
	LineHeight() float64
}

// Ellipsis is appended to a truncated final line.
const Ellipsis = "..."

// Wrap breaks text into at most maxLines lines fitting maxWidth,
// breaking at spaces and falling back to character breaks for words
// wider than the line. When the text does not fit, the final line is
// truncated character by character until line+ellipsis fits.
//
// The result is never empty for non-empty input; a maxWidth too small
// for even one character still yields one line per word rune.
func Wrap(m Measurer, text string, maxWidth float64, maxLines int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || maxLines <= 0 {
		return nil
	}

	var lines []string
	words := strings.Fields(text)
	current := ""

	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.Width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		flush()
		if m.Width(word) <= maxWidth {
			current = word
			continue
		}
		// Word wider than the line: hard-break on runes.
		for _, part := range splitRunes(m, word, maxWidth) {
			lines = append(lines, part)
		}
		if len(lines) > 0 {
			current = lines[len(lines)-1]
			lines = lines[:len(lines)-1]
		}
	}
	flush()

	if len(lines) <= maxLines {
		return lines
	}
	kept := lines[:maxLines]
	kept[maxLines-1] = truncate(m, kept[maxLines-1], maxWidth)
	return kept
}

// splitRunes hard-breaks a single word into maxWidth-sized chunks.
func splitRunes(m Measurer, word string, maxWidth float64) []string {
	var parts []string
	current := ""
	for _, r := range word {
		candidate := current + string(r)
		if current != "" && m.Width(candidate) > maxWidth {
			parts = append(parts, current)
			current = string(r)
			continue
		}
		current = candidate
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

// truncate shortens line until line+ellipsis fits maxWidth.
func truncate(m Measurer, line string, maxWidth float64) string {
	runes := []rune(line)
	for len(runes) > 0 {
		candidate := strings.TrimRight(string(runes), " ") + Ellipsis
		if m.Width(candidate) <= maxWidth {
			return candidate
		}
		runes = runes[:len(runes)-1]
	}
	return Ellipsis
}

// Height returns the pixel height of n wrapped lines plus leading
// above and below.
func Height(m Measurer, n int, leading float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*m.LineHeight() + 2*leading
}
