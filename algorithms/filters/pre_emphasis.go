package filters

// PreEmphasis implements a first-order pre-emphasis filter,
//
//	y[0] = x[0]
//	y[n] = x[n] - α*x[n-1]
//
// It flattens the natural spectral roll-off of voiced speech before linear
// prediction. α is typically 0.95-0.97 for speech.
//
// References:
//   - L.R. Rabiner, R.W. Schafer, "Digital Processing of Speech Signals",
//     Prentice-Hall, 1978, Chapter 4
type PreEmphasis struct {
	coefficient float64 // Pre-emphasis coefficient α
}

// DefaultPreEmphasisCoefficient is the usual speech value
const DefaultPreEmphasisCoefficient = 0.97

// NewPreEmphasis creates a pre-emphasis filter with specified coefficient.
//
// Parameters:
//   - coefficient: Pre-emphasis coefficient α (0.0 < α < 1.0)
//     Higher values = more emphasis of high frequencies
func NewPreEmphasis(coefficient float64) *PreEmphasis {
	return &PreEmphasis{
		coefficient: coefficient,
	}
}

// ProcessFrame filters one frame and returns a new slice. Each frame starts
// fresh: no sample carries over from a previous call.
func (pe *PreEmphasis) ProcessFrame(frame []float64) []float64 {
	output := make([]float64, len(frame))
	if len(frame) == 0 {
		return output
	}

	output[0] = frame[0]
	for i := 1; i < len(frame); i++ {
		output[i] = frame[i] - pe.coefficient*frame[i-1]
	}

	return output
}
