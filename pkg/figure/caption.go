package figure

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Caption validation decides whether a candidate string is a
// trustworthy figure/table caption rather than body text that got
// concatenated during extraction. The rules are deliberately strict:
// a false negative costs one caption, a false positive contaminates a
// figure with body text.

var (
	// markerRe matches an explicit figure/table marker with a number,
	// including the CJK equivalents the extractor emits.
	markerRe = regexp.MustCompile(`(?i)(?:Figure|Fig\.?|图|Table|表)\s*(\d+)`)

	// looseMarkerRe accepts a marker at text start even without a
	// number ("Figure: overall architecture").
	looseMarkerRe = regexp.MustCompile(`(?i)^(?:Figure|Fig\.?|图|Table|表)`)

	// allCapsLineRe and numberedHeadingRe detect heading-style lines
	// that signal the start of trailing body text.
	allCapsLineRe     = regexp.MustCompile(`^[A-Z][A-Z\s]+$`)
	numberedHeadingRe = regexp.MustCompile(`^\d+\.\s+[A-Z]`)
)

// maxCaptionLines bounds how much of a candidate survives truncation.
const maxCaptionLines = 5

// Validate checks a candidate caption and returns the purified text.
// On success the text starts at the figure/table marker and is
// truncated at the first heading-style line or after five lines,
// whichever comes first. On failure it returns ("", false); callers
// must not fall back to the raw candidate.
func Validate(text string) (string, bool) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return "", false
	}

	loc := markerRe.FindStringIndex(text)
	if loc == nil && !looseMarkerRe.MatchString(text) {
		return "", false
	}
	if loc != nil {
		text = text[loc[0]:]
	}

	lines := strings.Split(text, "\n")
	var kept []string
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			// A blank line followed by a fresh sentence marks the
			// start of a new paragraph; stop there.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if len(next) > 10 && next[0] >= 'A' && next[0] <= 'Z' {
					break
				}
			}
			continue
		}
		if allCapsLineRe.MatchString(line) || numberedHeadingRe.MatchString(line) {
			break
		}
		kept = append(kept, line)
		if len(kept) >= maxCaptionLines {
			break
		}
	}

	purified := strings.TrimSpace(strings.Join(kept, "\n"))
	if !markerRe.MatchString(purified) {
		return "", false
	}
	return purified, true
}

// ExtractOrdinal parses the number following the figure/table marker,
// e.g. "Figure 8: ..." yields 8. Returns false when the text carries
// no numbered marker.
func ExtractOrdinal(text string) (int, bool) {
	m := markerRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
