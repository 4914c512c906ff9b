// Package annotation parses time-aligned phoneme label files into spans of
// sample indices grouped by label.
package annotation

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-phonon/errs"
)

// DefaultSeparator is the field separator of Audacity label exports.
const DefaultSeparator = "\t"

// Span is one annotated phoneme occurrence, bounded by [Start, End) sample
// indices.
type Span struct {
	Label    Label
	Name     string // raw code from the file
	Start    int
	End      int
	Instance int // position among spans with the same Name, in file order
	Line     int // 1-based source line
}

// Len is the number of samples covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Index groups spans by label name, preserving file order within a group.
type Index struct {
	groups map[string][]Span
	order  []string // other names in first-seen order
}

// Spans returns the spans annotated with name, in file order.
func (idx *Index) Spans(name string) []Span {
	return idx.groups[name]
}

// Names lists every label present in the index: the standard labels first in
// dataset order, then unrecognized names in order of first appearance.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.groups))
	for _, l := range StandardLabels() {
		if _, ok := idx.groups[l.String()]; ok {
			names = append(names, l.String())
		}
	}
	return append(names, idx.order...)
}

// Len is the total number of spans.
func (idx *Index) Len() int {
	n := 0
	for _, spans := range idx.groups {
		n += len(spans)
	}
	return n
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path, sep string, sampleRate int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Annotationf("open %s: %w", path, err)
	}
	defer f.Close()

	idx, err := Parse(f, sep, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// Parse reads "start<sep>end<sep>label" rows with times in seconds and
// converts them to sample indices with floor(t * sampleRate).
func Parse(r io.Reader, sep string, sampleRate int) (*Index, error) {
	if sampleRate <= 0 {
		return nil, errs.Configurationf("sample rate must be positive, got %d", sampleRate)
	}
	if sep == "" {
		sep = DefaultSeparator
	}

	idx := &Index{groups: make(map[string][]Span)}
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		// Audacity writes spectral selection rows as "\<tab>f0<tab>f1"
		if strings.HasPrefix(text, `\`) {
			continue
		}

		span, err := parseRow(text, sep, sampleRate, line)
		if err != nil {
			return nil, err
		}

		if _, seen := idx.groups[span.Name]; !seen && !span.Label.Standard() {
			idx.order = append(idx.order, span.Name)
		}
		span.Instance = len(idx.groups[span.Name])
		idx.groups[span.Name] = append(idx.groups[span.Name], span)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Annotationf("read line %d: %w", line+1, err)
	}

	return idx, nil
}

func parseRow(text, sep string, sampleRate, line int) (Span, error) {
	fields := strings.Split(text, sep)
	if len(fields) != 3 {
		return Span{}, errs.Annotationf("line %d: want 3 fields, got %d", line, len(fields))
	}

	start, err := parseTime(fields[0])
	if err != nil {
		return Span{}, errs.Annotationf("line %d: start time %q: %w", line, fields[0], err)
	}
	end, err := parseTime(fields[1])
	if err != nil {
		return Span{}, errs.Annotationf("line %d: end time %q: %w", line, fields[1], err)
	}

	name := strings.TrimSpace(fields[2])
	if name == "" {
		return Span{}, errs.Annotationf("line %d: empty label", line)
	}

	startIdx := toSample(start, sampleRate)
	endIdx := toSample(end, sampleRate)
	if startIdx < 0 {
		return Span{}, errs.Configurationf("line %d: negative start %gs", line, start)
	}
	if endIdx < startIdx {
		return Span{}, errs.Configurationf("line %d: end sample %d before start sample %d", line, endIdx, startIdx)
	}

	return Span{
		Label: ParseLabel(name),
		Name:  name,
		Start: startIdx,
		End:   endIdx,
		Line:  line,
	}, nil
}

func parseTime(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}

func toSample(seconds float64, sampleRate int) int {
	return int(math.Floor(seconds * float64(sampleRate)))
}
