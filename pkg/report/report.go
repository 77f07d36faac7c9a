// Package report records where every figure ended up.
//
// A report is the machine-readable companion to the rendered sheets:
// one entry per placed figure with its page and position, one entry
// per skipped group with the reason, plus page fill statistics. The
// same document feeds the JSON artifact, the serve API response, and
// the optional Mongo archive.
package report

import (
	"github.com/google/uuid"
)

// runNamespace salts run IDs so they never collide with other UUID
// users sharing a database.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://figsheet.dev/run"))

// NewRunID derives a deterministic run ID from the inputs that define
// a run. Re-running the same manifest with the same settings yields
// the same ID, which keeps the Mongo archive free of duplicates.
func NewRunID(parts ...string) string {
	joined := ""
	for _, p := range parts {
		joined += p + "\x00"
	}
	return uuid.NewSHA1(runNamespace, []byte(joined)).String()
}

// Report is the full outcome of one pipeline run. It carries no
// wall-clock state: rerunning an unchanged manifest writes a
// byte-identical report.
type Report struct {
	RunID  string `json:"run_id" bson:"run_id"`
	Source string `json:"source" bson:"source"`
	Packer string `json:"packer" bson:"packer"`

	PageW float64 `json:"page_width" bson:"page_width"`
	PageH float64 `json:"page_height" bson:"page_height"`

	Pages   []PageStats `json:"pages" bson:"pages"`
	Figures []Figure    `json:"figures" bson:"figures"`
	Skipped []Skipped   `json:"skipped,omitempty" bson:"skipped,omitempty"`

	Stats Stats `json:"stats" bson:"stats"`
}

// PageStats summarizes one output page.
type PageStats struct {
	Index     int     `json:"index" bson:"index"`
	Figures   int     `json:"figures" bson:"figures"`
	FillRatio float64 `json:"fill_ratio" bson:"fill_ratio"`
}

// Figure records one placed figure.
type Figure struct {
	GroupID string   `json:"group_id" bson:"group_id"`
	Caption string   `json:"caption,omitempty" bson:"caption,omitempty"`
	Members []string `json:"members" bson:"members"`

	SourcePage int `json:"source_page" bson:"source_page"`
	SheetIndex int `json:"sheet_index" bson:"sheet_index"`

	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	W     float64 `json:"w" bson:"w"`
	H     float64 `json:"h" bson:"h"`
	Scale float64 `json:"scale" bson:"scale"`
}

// Skipped records one group dropped before layout and why.
type Skipped struct {
	GroupID string `json:"group_id" bson:"group_id"`
	Reason  string `json:"reason" bson:"reason"`
	Detail  string `json:"detail,omitempty" bson:"detail,omitempty"`
}

// Stats aggregates the run. Per-stage durations are deliberately not
// part of the report; the runner logs them instead.
type Stats struct {
	Groups   int     `json:"groups" bson:"groups"`
	Placed   int     `json:"placed" bson:"placed"`
	Dropped  int     `json:"dropped" bson:"dropped"`
	MeanFill float64 `json:"mean_fill" bson:"mean_fill"`
}

// Finalize fills the aggregate stats from the detail slices.
func (r *Report) Finalize() {
	r.Stats.Placed = len(r.Figures)
	r.Stats.Dropped = len(r.Skipped)
	r.Stats.Groups = r.Stats.Placed + r.Stats.Dropped

	if len(r.Pages) > 0 {
		sum := 0.0
		for _, p := range r.Pages {
			sum += p.FillRatio
		}
		r.Stats.MeanFill = sum / float64(len(r.Pages))
	}
}
