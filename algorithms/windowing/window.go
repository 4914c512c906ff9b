package windowing

import "fmt"

// Window is a precomputed tapering function applied to one analysis frame.
type Window interface {
	ApplyInPlace(signal []float64) error
	Size() int
	Type() string
}

// New creates a periodic window of the named type. Periodic windows are the
// FFT-friendly variant used for spectrogram framing.
func New(name string, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	switch name {
	case "", "hann":
		return NewHann(size, false), nil
	case "hamming":
		return NewHamming(size, false), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", name)
	}
}

func applyCoefficients(signal, coefficients []float64) error {
	if len(signal) != len(coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(coefficients))
	}
	for i, c := range coefficients {
		signal[i] *= c
	}
	return nil
}

// denominator returns N for periodic windows and N-1 for symmetric ones.
func denominator(size int, symmetric bool) float64 {
	if symmetric && size > 1 {
		return float64(size - 1)
	}
	return float64(size)
}
