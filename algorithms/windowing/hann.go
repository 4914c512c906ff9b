package windowing

import "math"

// Hann is a raised-cosine window
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a Hann window. symmetric=false gives the periodic form.
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.coefficients = make([]float64, size)
	d := denominator(size, symmetric)
	for i := range size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/d))
	}
	return h
}

// ApplyInPlace multiplies signal by the window coefficients
func (h *Hann) ApplyInPlace(signal []float64) error {
	return applyCoefficients(signal, h.coefficients)
}

// Coefficients returns a copy of the window coefficients
func (h *Hann) Coefficients() []float64 {
	return append([]float64(nil), h.coefficients...)
}

func (h *Hann) Size() int    { return h.size }
func (h *Hann) Type() string { return "hann" }
