// Package features turns waveform segments into per-frame cepstral feature
// rows, dropping the leading energy coefficient.
package features

import (
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-phonon/errs"
)

// DefaultCoefficients is the transform's coefficient count; 12 remain after
// the first is dropped.
const DefaultCoefficients = 13

// Transform computes a frames x n coefficient matrix for a segment. It
// returns nil when the segment holds no complete frame.
type Transform interface {
	Coefficients(samples []float64, sampleRate, frameSize, hopSize, n int) (*mat.Dense, error)
}

// Matrix holds the retained features of one segment, one row per frame.
// The zero value is a valid zero-row matrix.
type Matrix struct {
	m    mat.Matrix
	cols int
}

// NewMatrix wraps a frames x features matrix.
func NewMatrix(m mat.Matrix) Matrix {
	if m == nil {
		return Matrix{}
	}
	_, c := m.Dims()
	return Matrix{m: m, cols: c}
}

// Rows is the number of frames.
func (f Matrix) Rows() int {
	if f.m == nil {
		return 0
	}
	r, _ := f.m.Dims()
	return r
}

// Cols is the feature width.
func (f Matrix) Cols() int {
	return f.cols
}

// Row copies frame i into a new slice.
func (f Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, f.m)
}

// Extractor applies a Transform and keeps coefficients 1..n-1.
type Extractor struct {
	transform       Transform
	numCoefficients int
}

// NewExtractor creates an extractor producing numCoefficients-1 features per
// frame. numCoefficients must be at least 2.
func NewExtractor(t Transform, numCoefficients int) (*Extractor, error) {
	if numCoefficients < 2 {
		return nil, errs.Configurationf("coefficient count %d leaves no features after dropping the first", numCoefficients)
	}
	return &Extractor{transform: t, numCoefficients: numCoefficients}, nil
}

// Width is the number of features per emitted row.
func (e *Extractor) Width() int {
	return e.numCoefficients - 1
}

// Extract computes the features for one segment. A segment shorter than
// frameSize, including an empty one, yields a zero-row Matrix.
func (e *Extractor) Extract(samples []float64, sampleRate, frameSize, hopSize int) (Matrix, error) {
	empty := Matrix{cols: e.Width()}
	if len(samples) < frameSize {
		return empty, nil
	}

	coeffs, err := e.transform.Coefficients(samples, sampleRate, frameSize, hopSize, e.numCoefficients)
	if err != nil {
		return empty, errs.Configurationf("feature transform: %w", err)
	}
	if coeffs == nil {
		return empty, nil
	}

	rows, cols := coeffs.Dims()
	if cols != e.numCoefficients {
		return empty, errs.Configurationf("transform returned %d coefficients, want %d", cols, e.numCoefficients)
	}

	return NewMatrix(coeffs.Slice(0, rows, 1, cols)), nil
}
