package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Table represents a report table ready to be drawn or exported.
// Cells are already formatted; Cells[i] belongs to RowLabels[i].
type Table struct {
	Name       string     `json:"name" validate:"required"`
	Title      string     `json:"title"`
	IndexLabel string     `json:"index_label,omitempty"`
	Columns    []string   `json:"columns" validate:"required,min=1"`
	RowLabels  []string   `json:"row_labels"`
	Cells      [][]string `json:"cells"`
	Note       string     `json:"note,omitempty"`
}

// Validate checks the struct tags and that every body row has a label and
// one cell per column.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("table is nil")
	}
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("table %q: %w", t.Name, err)
	}
	if len(t.RowLabels) != len(t.Cells) {
		return fmt.Errorf("table %q: %d row labels for %d rows", t.Name, len(t.RowLabels), len(t.Cells))
	}
	for i, row := range t.Cells {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %q: row %d has %d cells, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// NumRows returns the number of body rows.
func (t *Table) NumRows() int {
	return len(t.Cells)
}

// ArtifactKind defines what an output file holds
type ArtifactKind string

const (
	ArtifactChart    ArtifactKind = "chart"
	ArtifactTable    ArtifactKind = "table"
	ArtifactCSV      ArtifactKind = "csv"
	ArtifactWorkbook ArtifactKind = "workbook"
	ArtifactJSON     ArtifactKind = "json"
)

// Artifact describes one file written by a run
type Artifact struct {
	Name      string       `json:"name"`
	Kind      ArtifactKind `json:"kind"`
	Path      string       `json:"path"`
	Size      int64        `json:"size"`
	CreatedAt time.Time    `json:"created_at"`
}

// Manifest lists everything a run produced.
type Manifest struct {
	RunID       string     `json:"run_id"`
	Source      string     `json:"source"`
	Cutoff      string     `json:"cutoff"`
	Rows        int        `json:"rows"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
	Artifacts   []Artifact `json:"artifacts"`
}

// Add appends an artifact to the manifest.
func (m *Manifest) Add(a Artifact) {
	m.Artifacts = append(m.Artifacts, a)
}

// ByKind returns the artifacts of the given kind in insertion order.
func (m *Manifest) ByKind(kind ArtifactKind) []Artifact {
	var out []Artifact
	for _, a := range m.Artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
