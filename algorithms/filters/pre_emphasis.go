package filters

import (
	"fmt"
)

// PreEmphasis is the first-order high-frequency boost
//
//	y[n] = x[n] - α*x[n-1]
//
// α is typically 0.95-0.97 for speech.
type PreEmphasis struct {
	coefficient float64
	lastSample  float64
}

// NewPreEmphasis creates a pre-emphasis filter. The coefficient must lie in
// [0, 1); zero passes the signal through unchanged.
func NewPreEmphasis(coefficient float64) (*PreEmphasis, error) {
	if coefficient < 0 || coefficient >= 1 {
		return nil, fmt.Errorf("pre-emphasis coefficient must be in [0, 1), got %g", coefficient)
	}
	return &PreEmphasis{coefficient: coefficient}, nil
}

// Coefficient returns α.
func (pe *PreEmphasis) Coefficient() float64 {
	return pe.coefficient
}

// Process filters one sample.
func (pe *PreEmphasis) Process(input float64) float64 {
	output := input - pe.coefficient*pe.lastSample
	pe.lastSample = input
	return output
}

// ProcessBuffer filters input into a new slice, carrying state across calls.
func (pe *PreEmphasis) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = pe.Process(sample)
	}
	return output
}

// Reset clears the filter history.
func (pe *PreEmphasis) Reset() {
	pe.lastSample = 0
}
