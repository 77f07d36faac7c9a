package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRunIDDeterministic(t *testing.T) {
	a := NewRunID("paper.json", "hybrid")
	b := NewRunID("paper.json", "hybrid")
	if a != b {
		t.Errorf("same inputs gave %s and %s", a, b)
	}
	if a == NewRunID("paper.json", "masonry") {
		t.Error("different packer gave the same run ID")
	}
	// Concatenation must not be ambiguous across part boundaries.
	if NewRunID("ab", "c") == NewRunID("a", "bc") {
		t.Error("part boundaries not separated")
	}
}

func TestFinalize(t *testing.T) {
	r := Report{
		Pages: []PageStats{
			{Index: 0, FillRatio: 0.8},
			{Index: 1, FillRatio: 0.4},
		},
		Figures: []Figure{{GroupID: "p0-m1"}, {GroupID: "p0-m2"}, {GroupID: "p1-m1"}},
		Skipped: []Skipped{{GroupID: "p2-m1", Reason: "decorative"}},
	}
	r.Finalize()

	if r.Stats.Placed != 3 || r.Stats.Dropped != 1 || r.Stats.Groups != 4 {
		t.Errorf("stats = %+v, want 3 placed, 1 dropped, 4 groups", r.Stats)
	}
	if r.Stats.MeanFill != 0.6 {
		t.Errorf("mean fill = %v, want 0.6", r.Stats.MeanFill)
	}
}

func TestFileStoreSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	r := &Report{
		RunID:   NewRunID("doc"),
		Source:  "doc",
		Packer:  "hybrid",
		Figures: []Figure{{GroupID: "p0-m1", Members: []string{"a.png"}, SheetIndex: 0, Scale: 0.9}},
	}
	r.Finalize()

	if err := (FileStore{Path: path}).Save(context.Background(), r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if got.RunID != r.RunID || len(got.Figures) != 1 || got.Figures[0].GroupID != "p0-m1" {
		t.Errorf("round-tripped report mismatch: %+v", got)
	}
}
