package spectral

// DefaultRolloffThreshold is the cumulative energy fraction used for rolloff
const DefaultRolloffThreshold = 0.95

// SpectralRolloff computes spectral rolloff frequency
type SpectralRolloff struct {
	sampleRate int
}

// NewSpectralRolloff creates a new spectral rolloff calculator
func NewSpectralRolloff(sampleRate int) *SpectralRolloff {
	return &SpectralRolloff{
		sampleRate: sampleRate,
	}
}

// Compute returns the frequency at which cumulative energy first reaches
// threshold (0-1) of the total. Silent spectra give 0.
func (sr *SpectralRolloff) Compute(spectrum []float64, threshold float64) float64 {
	if len(spectrum) == 0 {
		return 0.0
	}

	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}

	if totalEnergy == 0 {
		return 0
	}

	targetEnergy := threshold * totalEnergy
	cumulativeEnergy := 0.0

	for i, mag := range spectrum {
		cumulativeEnergy += mag * mag
		if cumulativeEnergy >= targetEnergy {
			return BinFrequency(i, len(spectrum), sr.sampleRate)
		}
	}

	return BinFrequency(len(spectrum)-1, len(spectrum), sr.sampleRate)
}
