// Package filters holds the single-pole filters applied to a recording before
// segmentation.
package filters

import (
	"fmt"
	"math"
)

// DCRemoval is a one-pole high-pass filter that removes the DC offset:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// with the pole R ≈ 1 - 2π·fc/fs.
type DCRemoval struct {
	pole float64
	x1   float64
	y1   float64
}

// NewDCRemoval creates a DC blocker with the given cutoff in Hz.
func NewDCRemoval(sampleRate int, cutoffHz float64) (*DCRemoval, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if cutoffHz <= 0 || cutoffHz >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("dc cutoff %g Hz outside (0, %d)", cutoffHz, sampleRate/2)
	}
	pole := 1.0 - 2.0*math.Pi*cutoffHz/float64(sampleRate)
	// clamp to a stable pole
	pole = math.Min(math.Max(pole, 0.001), 0.999)
	return &DCRemoval{pole: pole}, nil
}

// Pole returns R.
func (dc *DCRemoval) Pole() float64 {
	return dc.pole
}

// Process filters one sample.
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.pole*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessBuffer filters input into a new slice, carrying state across calls.
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// Reset clears the filter history.
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
