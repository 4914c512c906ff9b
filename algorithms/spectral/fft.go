package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp, which handles non power-of-two sizes.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full complex spectrum of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// PowerSpectrum returns |X[k]|^2 for the n/2+1 non-negative frequency bins
// of a real frame of length n.
func (f *FFT) PowerSpectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}
	spectrum := f.Compute(frame)
	bins := len(frame)/2 + 1
	power := make([]float64, bins)
	for k := range bins {
		re, im := real(spectrum[k]), imag(spectrum[k])
		power[k] = re*re + im*im
	}
	return power
}
