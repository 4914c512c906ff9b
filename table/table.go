// Package table assembles one subject's per-phoneme feature rows.
package table

import (
	"fmt"

	"github.com/RyanBlaney/sonido-phonon/features"
	"github.com/RyanBlaney/sonido-phonon/metadata"
)

// Column names of the persisted datasets, excluding the feature columns.
const (
	ColumnIndex   = "row_index"
	ColumnSubject = "mb_name"
	ColumnTag     = "phonon"
	ColumnStatus  = "asthma_status"
)

// Row is one transform frame of one phoneme instance.
type Row struct {
	Index    int // frame position within its instance
	Subject  string
	Features []float64
	Tag      string // "{label}_{instance}"
	Status   string
}

// Table is every row one subject contributes to one label's dataset.
type Table struct {
	Label string
	Width int
	Rows  []Row
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Header returns the dataset column names for a feature width:
// row_index, mb_name, f1..fN, phonon, asthma_status.
func Header(width int) []string {
	h := make([]string, 0, width+4)
	h = append(h, ColumnIndex, ColumnSubject)
	for i := 1; i <= width; i++ {
		h = append(h, fmt.Sprintf("f%d", i))
	}
	return append(h, ColumnTag, ColumnStatus)
}

// Tag formats the phoneme-instance identifier.
func Tag(label string, instance int) string {
	return fmt.Sprintf("%s_%d", label, instance)
}

// Build lays out instances[i]'s frames as rows tagged label_i. Instances with
// no frames add no rows but keep their index, so later tags do not shift.
func Build(label string, width int, subject metadata.Subject, instances []features.Matrix) *Table {
	total := 0
	for _, m := range instances {
		total += m.Rows()
	}

	t := &Table{
		Label: label,
		Width: width,
		Rows:  make([]Row, 0, total),
	}

	for i, m := range instances {
		tag := Tag(label, i)
		for frame := range m.Rows() {
			t.Rows = append(t.Rows, Row{
				Index:    frame,
				Subject:  subject.Name,
				Features: m.Row(frame),
				Tag:      tag,
				Status:   subject.Status,
			})
		}
	}

	return t
}
