package figure

import (
	"testing"

	"github.com/figsheet/figsheet/pkg/manifest"
)

func sourced(e Entry, path string) Entry {
	e.Element = manifest.Element{SourcePath: path}
	return e
}

func TestKeepGroup(t *testing.T) {
	tests := []struct {
		name   string
		group  Group
		keep   bool
		reason SkipReason
	}{
		{
			name: "ordinary figure",
			group: Group{
				Members: []Entry{sourced(entry(0, 100, 100, 500, 400), "fig1.png")},
				Caption: "Figure 1: results",
			},
			keep: true,
		},
		{
			name: "decorative caption",
			group: Group{
				Members: []Entry{sourced(entry(0, 100, 100, 500, 400), "logo.png")},
				Caption: "Company logo",
			},
			keep:   false,
			reason: SkipDecorative,
		},
		{
			name: "decorative heading",
			group: Group{
				Members: []Entry{
					func() Entry {
						e := sourced(entry(0, 100, 100, 500, 400), "head.png")
						e.Heading = "Author Photo and Bio"
						return e
					}(),
				},
			},
			keep:   false,
			reason: SkipDecorative,
		},
		{
			name: "tiny ornament",
			group: Group{
				Members: []Entry{sourced(entry(0, 100, 100, 110, 110), "dot.png")},
			},
			keep:   false,
			reason: SkipTooSmall,
		},
		{
			name: "numbered caption overrides size filter",
			group: Group{
				Members: []Entry{
					func() Entry {
						e := sourced(entry(0, 100, 100, 110, 110), "small.png")
						e.Ordinal, e.HasOrdinal = 4, true
						return e
					}(),
				},
				Caption: "Figure 4: inset",
			},
			keep: true,
		},
		{
			name:   "no source path",
			group:  Group{Members: []Entry{entry(0, 100, 100, 500, 400)}},
			keep:   false,
			reason: SkipNoSource,
		},
		{
			name:   "empty group",
			group:  Group{},
			keep:   false,
			reason: SkipNoSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep, reason := KeepGroup(tt.group)
			if keep != tt.keep || reason != tt.reason {
				t.Errorf("KeepGroup = (%v, %q), want (%v, %q)", keep, reason, tt.keep, tt.reason)
			}
		})
	}
}

func TestFilterAllowDeny(t *testing.T) {
	ablation := Group{
		Members: []Entry{sourced(entry(0, 100, 100, 500, 400), "tab3.png")},
		Caption: "Ablation study across model sizes",
	}
	appendix := Group{
		Members: []Entry{sourced(entry(0, 100, 100, 500, 400), "appx.png")},
		Caption: "Appendix B: extended proofs",
	}

	f := Filter{Deny: []string{"appendix"}}
	if keep, _ := f.Keep(ablation); !keep {
		t.Error("unrelated caption denied")
	}
	if keep, reason := f.Keep(appendix); keep || reason != SkipDecorative {
		t.Errorf("denied caption kept (reason %q)", reason)
	}

	// Allow outranks deny and the size heuristic.
	small := Group{
		Members: []Entry{sourced(entry(0, 100, 100, 110, 110), "res.png")},
		Caption: "Main results",
	}
	f = Filter{Allow: []string{"results"}, Deny: []string{"results"}}
	if keep, _ := f.Keep(small); !keep {
		t.Error("allowed caption not kept")
	}

	// Allow matching is case-insensitive and checks headings too.
	h := sourced(entry(0, 100, 100, 110, 110), "exp.png")
	h.Heading = "5 EXPERIMENTS"
	f = Filter{Allow: []string{"experiments"}}
	if keep, _ := f.Keep(Group{Members: []Entry{h}}); !keep {
		t.Error("heading allow match not kept")
	}
}
