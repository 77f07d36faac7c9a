package figure

import (
	"testing"

	"github.com/figsheet/figsheet/pkg/geom"
)

func entry(page int, x0, y0, x1, y1 float64) Entry {
	return Entry{
		PageIndex: page,
		BBox:      geom.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1},
		HasBBox:   true,
	}
}

func withCaption(e Entry, text string) Entry {
	e.Caption = text
	if n, ok := ExtractOrdinal(text); ok {
		e.Ordinal, e.HasOrdinal = n, true
	}
	return e
}

func TestGroupEntriesSameOrdinal(t *testing.T) {
	// Two fragments carrying the same figure number bind no matter
	// how far apart they sit on the page.
	a := withCaption(entry(0, 100, 100, 300, 200), "Figure 3: left panel")
	b := withCaption(entry(0, 100, 800, 300, 900), "Figure 3: right panel")

	got := GroupEntries([]Entry{a, b}, DefaultConfig())
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if len(got[0].Members) != 2 {
		t.Errorf("group has %d members, want 2", len(got[0].Members))
	}
}

func TestGroupEntriesOrdinalsSplitAcrossPages(t *testing.T) {
	a := withCaption(entry(0, 100, 100, 300, 200), "Figure 3: one")
	b := withCaption(entry(1, 100, 100, 300, 200), "Figure 3: two")

	got := GroupEntries([]Entry{a, b}, DefaultConfig())
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2 (ordinals never bind across pages)", len(got))
	}
}

func TestGroupEntriesVerticalStack(t *testing.T) {
	// A captioned panel with an uncaptioned panel tight below it and
	// matching width forms one figure.
	a := withCaption(entry(0, 100, 100, 500, 300), "Figure caption pending")
	b := entry(0, 100, 320, 500, 520)

	got := GroupEntries([]Entry{a, b}, DefaultConfig())
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].Caption != "Figure caption pending" {
		t.Errorf("group caption = %q, want the captioned member's text", got[0].Caption)
	}
}

func TestGroupEntriesStackRejectsWideGap(t *testing.T) {
	a := withCaption(entry(0, 100, 100, 300, 200), "Figure caption pending")
	b := entry(0, 100, 800, 300, 900)

	got := GroupEntries([]Entry{a, b}, DefaultConfig())
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2 (gap exceeds the stack threshold)", len(got))
	}
}

func TestGroupEntriesOrdinalPropagation(t *testing.T) {
	a := withCaption(entry(0, 100, 100, 500, 300), "Figure 2: main panel")
	b := entry(0, 120, 320, 480, 420)

	got := GroupEntries([]Entry{a, b}, DefaultConfig())
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	for _, m := range got[0].Members {
		if !m.HasOrdinal || m.Ordinal != 2 {
			t.Errorf("member ordinal = (%d, %v), want (2, true)", m.Ordinal, m.HasOrdinal)
		}
	}
}

func TestGroupEntriesMergeAdjacentGroups(t *testing.T) {
	// Both carry captions so the stack stage passes on them, but the
	// connected-component merge joins the near-touching unions.
	a := withCaption(entry(0, 100, 100, 500, 300), "Figure without number top")
	b := withCaption(entry(0, 100, 320, 500, 520), "Figure without number bottom")

	got := GroupEntries([]Entry{a, b}, DefaultConfig())
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	if got[0].Caption != "Figure without number top" {
		t.Errorf("group caption = %q, want the first member's", got[0].Caption)
	}
}

func TestGroupEntriesNoLoss(t *testing.T) {
	entries := []Entry{
		withCaption(entry(0, 100, 100, 500, 300), "Figure 1: a"),
		entry(0, 100, 320, 500, 520),
		withCaption(entry(1, 50, 50, 200, 150), "Figure 2: b"),
		entry(1, 400, 600, 700, 800),
		entry(2, 0, 0, 100, 100),
		{ImageRel: "orphan.png", Caption: "Figure 9: floating"},
	}

	got := GroupEntries(entries, DefaultConfig())
	total := 0
	for _, g := range got {
		if len(g.Members) == 0 {
			t.Error("empty group in output")
		}
		total += len(g.Members)
	}
	if total != len(entries) {
		t.Errorf("groups cover %d entries, want %d", total, len(entries))
	}
}

func TestGroupEntriesDeterministicIDs(t *testing.T) {
	entries := []Entry{
		entry(1, 100, 100, 300, 200),
		entry(0, 100, 800, 300, 900),
		entry(0, 100, 100, 300, 200),
	}

	got := GroupEntries(entries, DefaultConfig())
	if len(got) != 3 {
		t.Fatalf("got %d groups, want 3", len(got))
	}
	wantIDs := []string{"p0-m1", "p0-m2", "p1-m1"}
	for i, g := range got {
		if g.ID != wantIDs[i] {
			t.Errorf("group %d ID = %q, want %q", i, g.ID, wantIDs[i])
		}
	}

	// Same input in a different order yields the same groups.
	shuffled := []Entry{entries[2], entries[0], entries[1]}
	again := GroupEntries(shuffled, DefaultConfig())
	for i := range got {
		if again[i].ID != got[i].ID || again[i].PageIndex != got[i].PageIndex {
			t.Errorf("rerun group %d = %s/p%d, want %s/p%d",
				i, again[i].ID, again[i].PageIndex, got[i].ID, got[i].PageIndex)
		}
	}
}

func TestGroupEntriesEmpty(t *testing.T) {
	if got := GroupEntries(nil, DefaultConfig()); got != nil {
		t.Errorf("GroupEntries(nil) = %v, want nil", got)
	}
}
