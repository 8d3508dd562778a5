package windowing

import (
	"math"
)

// Hamming represents a symmetric Hamming window,
// w[n] = 0.54 - 0.46*cos(2*pi*n/(N-1)).
type Hamming struct {
	size         int
	coefficients []float64
}

// NewHamming creates a new Hamming window of the given size
func NewHamming(size int) *Hamming {
	h := &Hamming{
		size: max(size, 0),
	}
	h.generate()
	return h
}

// generate creates the window coefficients. A one-point window is 1.
func (h *Hamming) generate() {
	h.coefficients = make([]float64, h.size)

	if h.size == 1 {
		h.coefficients[0] = 1
		return
	}

	denominator := float64(h.size - 1)
	for i := range h.size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}

// Apply applies the window to a signal (creates new array)
func (h *Hamming) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i := range h.size {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed
}

// ApplyHamming windows frame with a Hamming window of matching length and
// returns a new slice.
func ApplyHamming(frame []float64) []float64 {
	return NewHamming(len(frame)).Apply(frame)
}
