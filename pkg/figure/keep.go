package figure

import (
	"strings"

	"github.com/figsheet/figsheet/pkg/geom"
)

// SkipReason explains why a group was dropped before composition.
// The values appear verbatim in placement reports.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipDecorative SkipReason = "decorative"
	SkipTooSmall   SkipReason = "too_small"
	SkipNoSource   SkipReason = "no_source"
)

// Words that mark a caption or heading as decoration rather than
// figure content. Lowercase; matched as substrings.
var decorativeWords = []string{
	"logo",
	"icon",
	"watermark",
	"qr code",
	"qrcode",
	"banner",
	"advertisement",
	"author photo",
	"headshot",
	"signature",
}

// Any bbox smaller than this on either axis is treated as an
// ornament, not a figure.
const minFigureExtent = 24.0

// Filter is the content relevance filter applied to each group after
// grouping. Deny substrings drop a group; Allow substrings force
// inclusion of a group the heuristics would otherwise skip. Matching
// is case-insensitive against the group's caption and every member
// heading. The filter is orthogonal to grouping itself.
type Filter struct {
	Allow []string
	Deny  []string
}

// DefaultFilter denies common decoration and allows nothing special.
func DefaultFilter() Filter {
	return Filter{Deny: decorativeWords}
}

// Keep decides whether a group carries figure content worth laying
// out. It never rejects a group that parsed a figure number; a
// numbered caption outranks every heuristic here.
func (f Filter) Keep(g Group) (bool, SkipReason) {
	if len(g.Members) == 0 {
		return false, SkipNoSource
	}
	hasSource := false
	for _, m := range g.Members {
		if m.SourcePath() != "" {
			hasSource = true
			break
		}
	}
	if !hasSource {
		return false, SkipNoSource
	}

	for _, m := range g.Members {
		if m.HasOrdinal {
			return true, SkipNone
		}
	}

	if matchesAny(g.Caption, f.Allow) {
		return true, SkipNone
	}
	for _, m := range g.Members {
		if matchesAny(m.Heading, f.Allow) {
			return true, SkipNone
		}
	}

	if matchesAny(g.Caption, f.Deny) {
		return false, SkipDecorative
	}
	for _, m := range g.Members {
		if matchesAny(m.Heading, f.Deny) {
			return false, SkipDecorative
		}
	}

	if u, ok := g.Union(); ok && tooSmall(u) {
		return false, SkipTooSmall
	}
	return true, SkipNone
}

// KeepGroup applies the default filter.
func KeepGroup(g Group) (bool, SkipReason) {
	return DefaultFilter().Keep(g)
}

func matchesAny(text string, words []string) bool {
	if text == "" || len(words) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func tooSmall(r geom.Rect) bool {
	return r.Width() < minFigureExtent || r.Height() < minFigureExtent
}
