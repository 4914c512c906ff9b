// Package metadata reads the per-subject biodata record that names the
// subject and carries its health-status label.
package metadata

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-phonon/errs"
)

// Subject identifies whose recording is being processed.
type Subject struct {
	Name   string // subjectBiodata.subjectName
	Status string // subjectBiodata.subjectType, the health-status label
}

type record struct {
	SubjectBiodata *struct {
		SubjectName *string `json:"subjectName"`
		SubjectType *string `json:"subjectType"`
	} `json:"subjectBiodata"`
}

// Load reads and parses the metadata file at path.
func Load(path string) (Subject, error) {
	f, err := os.Open(path)
	if err != nil {
		return Subject{}, errs.Metadataf("open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a metadata record. Both subjectBiodata fields must be present
// and non-blank.
func Parse(r io.Reader) (Subject, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return Subject{}, errs.Metadataf("decode record: %w", err)
	}
	if rec.SubjectBiodata == nil {
		return Subject{}, errs.Metadataf("missing subjectBiodata")
	}

	name := rec.SubjectBiodata.SubjectName
	if name == nil || strings.TrimSpace(*name) == "" {
		return Subject{}, errs.Metadataf("missing subjectBiodata.subjectName")
	}
	status := rec.SubjectBiodata.SubjectType
	if status == nil || strings.TrimSpace(*status) == "" {
		return Subject{}, errs.Metadataf("missing subjectBiodata.subjectType")
	}

	return Subject{Name: *name, Status: *status}, nil
}
