package metadata

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/internal/testsupport"
)

func TestParse(t *testing.T) {
	in := `{"subjectBiodata":{"subjectName":"MB01","subjectType":"asthma","age":41},"recordings":[]}`
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Name != "MB01" || got.Status != "asthma" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseMissingFields(t *testing.T) {
	tests := map[string]string{
		"no biodata":   `{"other":{}}`,
		"no name":      `{"subjectBiodata":{"subjectType":"healthy"}}`,
		"blank name":   `{"subjectBiodata":{"subjectName":"  ","subjectType":"healthy"}}`,
		"no type":      `{"subjectBiodata":{"subjectName":"MB02"}}`,
		"not json":     `subjectName=MB02`,
		"wrong shape":  `{"subjectBiodata":"MB02"}`,
		"numeric name": `{"subjectBiodata":{"subjectName":7,"subjectType":"healthy"}}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			if !errors.Is(err, errs.ErrMetadata) {
				t.Fatalf("err = %v, want ErrMetadata", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	testsupport.WriteFile(t, path, testsupport.Metadata(t, "MB03", "healthy"))

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != (Subject{Name: "MB03", Status: "healthy"}) {
		t.Fatalf("got %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, errs.ErrMetadata) {
		t.Fatalf("missing file err = %v, want ErrMetadata", err)
	}
}
