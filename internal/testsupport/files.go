package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes interleaved 16-bit PCM samples to path.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, data []int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
}

// Tone returns n mono 16-bit samples of a deterministic sawtooth-ish signal
// that is never silent, so every frame has energy.
func Tone(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = (i%97)*200 - 9600 + (i%13)*50
	}
	return out
}

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Annotation renders tab-separated "start end label" rows.
func Annotation(rows ...AnnotationRow) string {
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%g\t%g\t%s\n", r.Start, r.End, r.Label)
	}
	return b.String()
}

// AnnotationRow is one annotated span in seconds.
type AnnotationRow struct {
	Start float64
	End   float64
	Label string
}

// Metadata renders a subject metadata record.
func Metadata(t testing.TB, name, status string) string {
	t.Helper()

	record := map[string]any{
		"subjectBiodata": map[string]any{
			"subjectName": name,
			"subjectType": status,
		},
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return string(data)
}

// Subject describes a synthetic subject directory.
type Subject struct {
	Dir        string
	Name       string
	Status     string
	SampleRate int
	Samples    int
	Rows       []AnnotationRow

	SkipAudio      bool
	SkipAnnotation bool
	SkipMetadata   bool
}

// SubjectPaths are the files written for a Subject.
type SubjectPaths struct {
	Audio      string
	Annotation string
	Metadata   string
}

// WriteSubject lays out a subject directory using the discovery naming
// convention of the recordings ("<name>_before.wav", "<name>_before.anote.txt",
// "<name>.json").
func WriteSubject(t testing.TB, s Subject) SubjectPaths {
	t.Helper()

	base := filepath.Base(s.Dir)
	paths := SubjectPaths{
		Audio:      filepath.Join(s.Dir, base+"_before_vowels.wav"),
		Annotation: filepath.Join(s.Dir, base+"_before_vowels.anote.txt"),
		Metadata:   filepath.Join(s.Dir, base+".json"),
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if s.SkipAudio {
		paths.Audio = ""
	} else {
		WriteWAV(t, paths.Audio, s.SampleRate, 1, Tone(s.Samples))
	}

	if s.SkipAnnotation {
		paths.Annotation = ""
	} else {
		WriteFile(t, paths.Annotation, Annotation(s.Rows...))
	}

	if s.SkipMetadata {
		paths.Metadata = ""
	} else {
		WriteFile(t, paths.Metadata, Metadata(t, s.Name, s.Status))
	}

	return paths
}
