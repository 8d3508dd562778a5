package spectral

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// SibilanceParams configures sibilance detection
type SibilanceParams struct {
	LowFreq  float64 `json:"low_freq" yaml:"low_freq"`   // Band lower edge (Hz)
	HighFreq float64 `json:"high_freq" yaml:"high_freq"` // Band upper edge (Hz)

	MinScore float64 `json:"min_score" yaml:"min_score"` // Band energy ratio needed to flag sibilance
	MinZCR   float64 `json:"min_zcr" yaml:"min_zcr"`     // Normalised zero-crossing rate floor
	MinRMS   float64 `json:"min_rms" yaml:"min_rms"`     // Time-domain RMS floor
}

// DefaultSibilanceParams returns the /s/ and /sh/ band with the usual gates
func DefaultSibilanceParams() SibilanceParams {
	return SibilanceParams{
		LowFreq:  4000,
		HighFreq: 8000,
		MinScore: 0.4,
		MinZCR:   0.15,
		MinRMS:   0.01,
	}
}

// SibilanceResult describes high-frequency fricative energy in one frame
type SibilanceResult struct {
	Score        float64 `json:"score"`         // Band energy / total energy (0-1)
	CentroidHz   float64 `json:"centroid_hz"`   // Spectral centroid of the frame
	IsSibilant   bool    `json:"is_sibilant"`   // Score, ZCR and RMS gates all passed
	ZeroCrossing float64 `json:"zero_crossing"` // Normalised zero-crossing rate
	RMS          float64 `json:"rms"`
}

// SibilanceDetector scores fricative energy from a magnitude spectrum and
// its time-domain frame
type SibilanceDetector struct {
	sampleRate int
	params     SibilanceParams
	centroid   *SpectralCentroid
	zcr        *ZeroCrossingRate
}

// NewSibilanceDetector creates a detector with default parameters
func NewSibilanceDetector(sampleRate int) *SibilanceDetector {
	return NewSibilanceDetectorWithParams(sampleRate, DefaultSibilanceParams())
}

// NewSibilanceDetectorWithParams creates a detector with custom parameters
func NewSibilanceDetectorWithParams(sampleRate int, params SibilanceParams) *SibilanceDetector {
	return &SibilanceDetector{
		sampleRate: sampleRate,
		params:     params,
		centroid:   NewSpectralCentroid(sampleRate),
		zcr:        NewZeroCrossingRate(sampleRate),
	}
}

// Detect scores spectrum (half magnitude spectrum of frame) for sibilance
func (sd *SibilanceDetector) Detect(frame, spectrum []float64) SibilanceResult {
	power := NewPowerSpectrum().Compute(spectrum)
	total := common.Sum(power)

	result := SibilanceResult{
		CentroidHz:   sd.centroid.Compute(spectrum),
		ZeroCrossing: sd.zcr.ComputeNormalized(frame),
		RMS:          common.RMS(frame),
	}

	if total > 0 {
		band := BandPower(power, sd.sampleRate, sd.params.LowFreq, sd.params.HighFreq, false)
		result.Score = common.Clamp(band/total, 0, 1)
	}

	result.IsSibilant = result.Score > sd.params.MinScore &&
		result.ZeroCrossing > sd.params.MinZCR &&
		result.RMS > sd.params.MinRMS

	return result
}
