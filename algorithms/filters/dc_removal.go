package filters

import (
	"math"
)

// DCBlocker is a one-pole DC blocking filter,
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// Cheap USB and laptop microphones often record with a constant offset that
// would otherwise dominate the lowest FFT bins and bias the noise floor.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCBlocker struct {
	pole float64 // R, 0 < R < 1

	x1 float64
	y1 float64
}

// DefaultDCCutoffHz is low enough to leave a 50 Hz voice fundamental intact
const DefaultDCCutoffHz = 10.0

// NewDCBlocker creates a blocker whose -3 dB point sits near cutoffHz,
// using R ≈ 1 - 2π·fc/fs. The pole is clamped into (0, 1).
func NewDCBlocker(sampleRate int, cutoffHz float64) *DCBlocker {
	pole := 0.995
	if sampleRate > 0 && cutoffHz > 0 {
		pole = 1 - 2*math.Pi*cutoffHz/float64(sampleRate)
	}
	if pole >= 1 {
		pole = 0.999
	} else if pole <= 0 {
		pole = 0.001
	}

	return &DCBlocker{pole: pole}
}

// Process filters a single sample, carrying state across calls
func (dc *DCBlocker) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1 = x
	dc.y1 = y
	return y
}

// ProcessBuffer filters samples into a new slice, continuing from the
// current state
func (dc *DCBlocker) ProcessBuffer(samples []float64) []float64 {
	out := make([]float64, len(samples))
	for i, x := range samples {
		out[i] = dc.Process(x)
	}
	return out
}
