// Package segment slices a waveform into one sub-slice per annotated span.
package segment

import (
	"github.com/RyanBlaney/sonido-phonon/annotation"
	"github.com/RyanBlaney/sonido-phonon/errs"
)

// Segment is the waveform region of one span. Samples aliases the source
// waveform and may be empty.
type Segment struct {
	Span    annotation.Span
	Samples []float64
}

// Segments maps a label name to its segments in annotation order.
type Segments map[string][]Segment

// Split cuts waveform[start:end] for every span of the named labels, or of
// every label in idx when names is empty. Empty spans are kept so that
// position i in a group is always instance i. A span reaching past the end of
// the waveform is rejected rather than truncated; labels not named are never
// inspected.
func Split(waveform []float64, idx *annotation.Index, names ...string) (Segments, error) {
	if len(names) == 0 {
		names = idx.Names()
	}
	out := make(Segments, len(names))
	for _, name := range names {
		spans := idx.Spans(name)
		segs := make([]Segment, len(spans))
		for i, span := range spans {
			if span.Start < 0 || span.End < span.Start {
				return nil, errs.Configurationf("%s_%d: invalid span [%d, %d)", name, i, span.Start, span.End)
			}
			if span.End > len(waveform) {
				return nil, errs.Configurationf("%s_%d (line %d): span end %d beyond waveform length %d",
					name, i, span.Line, span.End, len(waveform))
			}
			segs[i] = Segment{
				Span:    span,
				Samples: waveform[span.Start:span.End:span.End],
			}
		}
		out[name] = segs
	}
	return out, nil
}
