package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"gonum.org/v1/gonum/stat"
)

// DefaultSlopeMaxFreq bounds the regression range of SpectralSlope
const DefaultSlopeMaxFreq = 8000.0

// SpectralSlope computes spectral tilt as the least-squares slope of
// dB magnitude against log10(frequency).
type SpectralSlope struct {
	sampleRate int
	minFreq    float64
	maxFreq    float64
}

// NewSpectralSlope creates a new spectral slope calculator over [1, 8000] Hz
func NewSpectralSlope(sampleRate int) *SpectralSlope {
	return NewSpectralSlopeWithRange(sampleRate, 1, DefaultSlopeMaxFreq)
}

// NewSpectralSlopeWithRange creates a calculator with a custom frequency range
func NewSpectralSlopeWithRange(sampleRate int, minFreq, maxFreq float64) *SpectralSlope {
	return &SpectralSlope{
		sampleRate: sampleRate,
		minFreq:    minFreq,
		maxFreq:    maxFreq,
	}
}

// Compute returns the slope in dB per decade. DC is always excluded.
// Fewer than two usable bins give 0.
func (ss *SpectralSlope) Compute(spectrum []float64) float64 {
	if len(spectrum) < 2 {
		return 0
	}

	xs := make([]float64, 0, len(spectrum))
	ys := make([]float64, 0, len(spectrum))

	for i := 1; i < len(spectrum); i++ {
		freq := BinFrequency(i, len(spectrum), ss.sampleRate)
		if freq < ss.minFreq {
			continue
		}
		if freq > ss.maxFreq {
			break
		}
		xs = append(xs, math.Log10(freq))
		ys = append(ys, common.AmplitudeToDB(spectrum[i], common.Epsilon))
	}

	if len(xs) < 2 {
		return 0
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if !common.IsFinite(slope) {
		return 0
	}
	return slope
}
