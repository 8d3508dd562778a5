package spectral

// PowerSpectrum converts magnitude spectra into power
type PowerSpectrum struct{}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute squares every magnitude
func (ps *PowerSpectrum) Compute(magnitudeSpectrum []float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	power := make([]float64, len(magnitudeSpectrum))
	for i, mag := range magnitudeSpectrum {
		power[i] = mag * mag
	}

	return power
}

// BandPower sums power over bins whose frequency lies in [lowHz, highHz].
// Set lowExclusive to make the lower edge open.
func BandPower(power []float64, sampleRate int, lowHz, highHz float64, lowExclusive bool) float64 {
	sum := 0.0
	for i, p := range power {
		freq := BinFrequency(i, len(power), sampleRate)
		if freq > highHz {
			break
		}
		if freq < lowHz || (lowExclusive && freq == lowHz) {
			continue
		}
		sum += p
	}
	return sum
}
