package pipeline

import (
	"sort"

	"github.com/RyanBlaney/sonido-phonon/dataset"
)

// Outcome classifies what happened to one subject.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// SubjectResult records one subject's outcome.
type SubjectResult struct {
	ID      string
	Name    string // subject name from metadata, when it was read
	Outcome Outcome
	Reason  string
	Kind    string // error kind for failures, see errs.Kind
	Rows    int
}

// Summary is the result of one run.
type Summary struct {
	RunID     string
	Processed []SubjectResult
	Skipped   []SubjectResult
	Failed    []SubjectResult
	Rows      map[string]int // rows written per label
	Files     []dataset.FileStats
}

func newSummary(runID string) *Summary {
	return &Summary{
		RunID: runID,
		Rows:  make(map[string]int),
	}
}

func (s *Summary) record(r SubjectResult, rows map[string]int) {
	switch r.Outcome {
	case OutcomeProcessed:
		s.Processed = append(s.Processed, r)
		for label, n := range rows {
			s.Rows[label] += n
		}
	case OutcomeSkipped:
		s.Skipped = append(s.Skipped, r)
	case OutcomeFailed:
		s.Failed = append(s.Failed, r)
	}
}

// Total is the number of subjects with a recorded outcome.
func (s *Summary) Total() int {
	return len(s.Processed) + len(s.Skipped) + len(s.Failed)
}

// TotalRows is the number of rows written across every label.
func (s *Summary) TotalRows() int {
	n := 0
	for _, rows := range s.Rows {
		n += rows
	}
	return n
}

// Labels returns the labels that received rows, sorted.
func (s *Summary) Labels() []string {
	labels := make([]string, 0, len(s.Rows))
	for label, n := range s.Rows {
		if n > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
