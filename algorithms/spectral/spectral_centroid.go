package spectral

// SpectralCentroid computes the energy-weighted mean frequency of a spectrum
type SpectralCentroid struct {
	sampleRate int
}

// NewSpectralCentroid creates a new spectral centroid calculator
func NewSpectralCentroid(sampleRate int) *SpectralCentroid {
	return &SpectralCentroid{
		sampleRate: sampleRate,
	}
}

// Compute calculates the centroid of a half magnitude spectrum, weighting
// each bin frequency by its power. Returns 0 for an empty or silent spectrum.
func (sc *SpectralCentroid) Compute(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 0.0
	}

	numerator := 0.0
	denominator := 0.0

	for i, mag := range spectrum {
		power := mag * mag
		numerator += BinFrequency(i, len(spectrum), sc.sampleRate) * power
		denominator += power
	}

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}
