package windowing

import "math"

// Hamming is a raised-cosine window that does not reach zero at the edges
type Hamming struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHamming creates a Hamming window. symmetric=false gives the periodic form.
func NewHamming(size int, symmetric bool) *Hamming {
	h := &Hamming{
		size:      size,
		symmetric: symmetric,
	}
	h.coefficients = make([]float64, size)
	d := denominator(size, symmetric)
	for i := range size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/d)
	}
	return h
}

// ApplyInPlace multiplies signal by the window coefficients
func (h *Hamming) ApplyInPlace(signal []float64) error {
	return applyCoefficients(signal, h.coefficients)
}

// Coefficients returns a copy of the window coefficients
func (h *Hamming) Coefficients() []float64 {
	return append([]float64(nil), h.coefficients...)
}

func (h *Hamming) Size() int    { return h.size }
func (h *Hamming) Type() string { return "hamming" }
