package pipeline

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/logging"
)

// Patterns are regular expressions matched against file names inside a
// subject directory.
type Patterns struct {
	Audio      string
	Annotation string
	Metadata   string
}

// SubjectInputs locates one subject's three input files. A path left empty
// means no file matched.
type SubjectInputs struct {
	ID             string
	AudioPath      string
	AnnotationPath string
	MetadataPath   string
}

// Complete reports whether every input path is set.
func (in SubjectInputs) Complete() bool {
	return in.AudioPath != "" && in.AnnotationPath != "" && in.MetadataPath != ""
}

type matchers struct {
	audio, annotation, metadata *regexp.Regexp
}

func compilePatterns(p Patterns) (*matchers, error) {
	audio, err := regexp.Compile(p.Audio)
	if err != nil {
		return nil, errs.Configurationf("audio pattern: %w", err)
	}
	ann, err := regexp.Compile(p.Annotation)
	if err != nil {
		return nil, errs.Configurationf("annotation pattern: %w", err)
	}
	meta, err := regexp.Compile(p.Metadata)
	if err != nil {
		return nil, errs.Configurationf("metadata pattern: %w", err)
	}
	return &matchers{audio: audio, annotation: ann, metadata: meta}, nil
}

// Discover treats every direct sub-directory of root as a subject and picks
// its input files by pattern. Subjects are returned sorted by directory name;
// within a directory the first matching file name wins.
func Discover(root string, p Patterns) ([]SubjectInputs, error) {
	m, err := compilePatterns(p)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errs.Loadf("read data dir %s: %w", root, err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "discovery",
		"root":      root,
	})

	var subjects []SubjectInputs
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, errs.Loadf("read subject dir %s: %w", dir, err)
		}

		in := SubjectInputs{ID: entry.Name()}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			name := f.Name()
			path := filepath.Join(dir, name)
			// a name matching several patterns is claimed by the first case
			switch {
			case m.annotation.MatchString(name):
				in.AnnotationPath = pick(in.AnnotationPath, path, logger)
			case m.audio.MatchString(name):
				in.AudioPath = pick(in.AudioPath, path, logger)
			case m.metadata.MatchString(name):
				in.MetadataPath = pick(in.MetadataPath, path, logger)
			}
		}
		subjects = append(subjects, in)
	}

	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })

	logger.Debug("Discovered subjects", logging.Fields{"count": len(subjects)})
	return subjects, nil
}

func pick(current, candidate string, logger logging.Logger) string {
	if current == "" {
		return candidate
	}
	logger.Warn("Ignoring extra matching file", logging.Fields{
		"kept":    current,
		"ignored": candidate,
	})
	return current
}
