package spectral

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// SoftPhonationIndex is the ratio of low-band (70-1600 Hz) to high-band
// (1600-4500 Hz] power. Breathy voices have weak upper harmonics and
// therefore a high index.
type SoftPhonationIndex struct {
	sampleRate int
	lowMin     float64
	split      float64
	highMax    float64
}

// NewSoftPhonationIndex creates an SPI calculator with the standard bands
func NewSoftPhonationIndex(sampleRate int) *SoftPhonationIndex {
	return &SoftPhonationIndex{
		sampleRate: sampleRate,
		lowMin:     70,
		split:      1600,
		highMax:    4500,
	}
}

// Compute returns SPI for a half magnitude spectrum. No low-band energy
// gives 0; an empty high band is guarded with Epsilon.
func (spi *SoftPhonationIndex) Compute(spectrum []float64) float64 {
	power := NewPowerSpectrum().Compute(spectrum)

	low := BandPower(power, spi.sampleRate, spi.lowMin, spi.split, false)
	if low <= 0 {
		return 0
	}
	high := BandPower(power, spi.sampleRate, spi.split, spi.highMax, true)

	return low / (high + common.Epsilon)
}
