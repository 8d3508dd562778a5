package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

const (
	// DefaultDuration is the standard calibration window
	DefaultDuration = 3000 * time.Millisecond

	// QuickDuration is the shortened window for a quick microphone check
	QuickDuration = 1000 * time.Millisecond

	// EmptyBandDB is reported for a band with no bins below Nyquist
	EmptyBandDB = -100.0

	rmsEpsilon = 1e-4
)

// Band is a frequency range [MinHz, MaxHz) in Hz
type Band struct {
	MinHz float64 `json:"min_hz" yaml:"min_hz"`
	MaxHz float64 `json:"max_hz" yaml:"max_hz"`
}

// Params configures a calibration run
type Params struct {
	Duration            time.Duration `json:"duration" yaml:"duration"`
	LowBand             Band          `json:"low_band" yaml:"low_band"`   // Fundamental range
	MidBand             Band          `json:"mid_band" yaml:"mid_band"`   // Formant range
	HighBand            Band          `json:"high_band" yaml:"high_band"` // Brightness and clarity
	FlatnessThresholdDB float64       `json:"flatness_threshold_db" yaml:"flatness_threshold_db"`
}

// DefaultParams returns a 3 s run over 80-250 / 250-2000 / 2000-8000 Hz with
// a 10 dB flatness threshold
func DefaultParams() Params {
	return Params{
		Duration:            DefaultDuration,
		LowBand:             Band{MinHz: 80, MaxHz: 250},
		MidBand:             Band{MinHz: 250, MaxHz: 2000},
		HighBand:            Band{MinHz: 2000, MaxHz: 8000},
		FlatnessThresholdDB: 10,
	}
}

// Environment classifies the recording room by its noise floor
type Environment string

const (
	EnvironmentQuiet  Environment = "quiet"
	EnvironmentNormal Environment = "normal"
	EnvironmentNoisy  Environment = "noisy"
)

// BandEnergies holds the mean dB level of each voice band
type BandEnergies struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// Recommendations are the live-analysis settings derived from a report
type Recommendations struct {
	NoiseGateThreshold  float64 `json:"noise_gate_threshold"` // Linear amplitude, 6 dB above the noise floor
	GainCompensation    float64 `json:"gain_compensation"`
	SmoothingFactor     float64 `json:"smoothing_factor"`
	ConfidenceThreshold float64 `json:"confidence_threshold"` // Minimum pitch confidence to trust
	Message             string  `json:"message"`
}

// Report is the outcome of one calibration run
type Report struct {
	NoiseFloorDB         float64         `json:"noise_floor_db"`
	BandEnergies         BandEnergies    `json:"band_energies"`
	Flatness             float64         `json:"flatness"`
	IsFlatResponse       bool            `json:"is_flat_response"`
	QualityScore         int             `json:"quality_score"`
	RecommendedNoiseGate float64         `json:"recommended_noise_gate"`
	Environment          Environment     `json:"environment"`
	Recommendations      Recommendations `json:"recommendations"`
	Frames               int             `json:"frames"`
}

// Accumulator collects per-tick time-domain and dB spectrum arrays. It keeps
// running sums, so memory does not grow with the run length.
type Accumulator struct {
	rmsSum      float64
	frames      int
	spectrumSum []float64
}

// Add folds one tick into the accumulator. Every spectrum must have the same
// bin count as the first one. Non-finite dB values count as EmptyBandDB.
func (a *Accumulator) Add(timeDomain, spectrumDB []float64) error {
	if len(timeDomain) == 0 {
		return ErrEmptyFrame
	}
	if a.spectrumSum == nil {
		a.spectrumSum = make([]float64, len(spectrumDB))
	}
	if len(spectrumDB) != len(a.spectrumSum) {
		return fmt.Errorf("%w: got %d bins, want %d", ErrSpectrumSize, len(spectrumDB), len(a.spectrumSum))
	}

	a.rmsSum += common.RMS(common.Sanitize(timeDomain))
	for i, db := range spectrumDB {
		if !common.IsFinite(db) {
			db = EmptyBandDB
		}
		a.spectrumSum[i] += db
	}
	a.frames++

	return nil
}

// Frames returns the number of ticks added so far
func (a *Accumulator) Frames() int {
	return a.frames
}

// Report computes the calibration report from everything added so far
func (a *Accumulator) Report(sampleRate int, params Params) (*Report, error) {
	if a.frames == 0 {
		return nil, ErrNoSamples
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("calibration: invalid sample rate %d", sampleRate)
	}

	noiseFloor := 20 * math.Log10(a.rmsSum/float64(a.frames)+rmsEpsilon)

	average := make([]float64, len(a.spectrumSum))
	for i, sum := range a.spectrumSum {
		average[i] = sum / float64(a.frames)
	}

	bands := BandEnergies{
		Low:  bandMeanDB(average, sampleRate, params.LowBand),
		Mid:  bandMeanDB(average, sampleRate, params.MidBand),
		High: bandMeanDB(average, sampleRate, params.HighBand),
	}
	flatness := common.PopStandardDeviation([]float64{bands.Low, bands.Mid, bands.High})
	isFlat := flatness < params.FlatnessThresholdDB
	score := QualityScore(noiseFloor, bands, isFlat)

	report := &Report{
		NoiseFloorDB:         noiseFloor,
		BandEnergies:         bands,
		Flatness:             flatness,
		IsFlatResponse:       isFlat,
		QualityScore:         score,
		RecommendedNoiseGate: NoiseGate(noiseFloor),
		Environment:          ClassifyEnvironment(noiseFloor),
		Recommendations:      Recommend(noiseFloor, score),
		Frames:               a.frames,
	}
	return report, nil
}

// bandMeanDB averages bins floor(min/binSize) up to but excluding
// floor(max/binSize), where binSize = sampleRate / (2*len(spectrum)).
func bandMeanDB(spectrum []float64, sampleRate int, band Band) float64 {
	if len(spectrum) == 0 {
		return EmptyBandDB
	}

	binSize := float64(sampleRate) / float64(2*len(spectrum))
	start := int(math.Floor(band.MinHz / binSize))
	end := min(int(math.Floor(band.MaxHz/binSize)), len(spectrum))
	if start < 0 || start >= end {
		return EmptyBandDB
	}

	return common.Mean(spectrum[start:end])
}

// QualityScore starts at 100 and subtracts 30/15/5 for a noise floor above
// -40/-50/-60 dB, 20 for an uneven response and 15 for a low band under
// -60 dB. The result is clamped to [0, 100].
func QualityScore(noiseFloorDB float64, bands BandEnergies, isFlat bool) int {
	score := 100

	switch {
	case noiseFloorDB > -40:
		score -= 30
	case noiseFloorDB > -50:
		score -= 15
	case noiseFloorDB > -60:
		score -= 5
	}

	if !isFlat {
		score -= 20
	}
	if bands.Low < -60 {
		score -= 15
	}

	return max(0, min(100, score))
}

// NoiseGate returns the linear amplitude 6 dB above the noise floor
func NoiseGate(noiseFloorDB float64) float64 {
	return common.DBToAmplitude(noiseFloorDB + 6)
}

// ClassifyEnvironment buckets a noise floor into quiet (< -60 dB),
// noisy (>= -45 dB) or normal
func ClassifyEnvironment(noiseFloorDB float64) Environment {
	switch {
	case noiseFloorDB < -60:
		return EnvironmentQuiet
	case noiseFloorDB < -45:
		return EnvironmentNormal
	default:
		return EnvironmentNoisy
	}
}

// Recommend derives live-analysis settings from the noise floor and score
func Recommend(noiseFloorDB float64, score int) Recommendations {
	rec := Recommendations{
		NoiseGateThreshold:  NoiseGate(noiseFloorDB),
		GainCompensation:    1.0,
		SmoothingFactor:     0.8,
		ConfidenceThreshold: 0.75,
		Message:             Message(score, noiseFloorDB),
	}

	if noiseFloorDB > -40 {
		rec.GainCompensation = 1.2
	}
	if noiseFloorDB > -30 {
		rec.SmoothingFactor = 0.9
	}
	if score > 70 {
		rec.ConfidenceThreshold = 0.6
	}

	return rec
}

// Message returns the user-facing summary for a score
func Message(score int, noiseFloorDB float64) string {
	switch {
	case score >= 80:
		return "Excellent microphone quality. Your setup is well suited to voice training."
	case score >= 60:
		return "Good microphone quality. Results should be accurate."
	case score >= 40 && noiseFloorDB > -40:
		return "High background noise detected. Try a quieter room or a headset microphone."
	case score >= 40:
		return "Microphone quality is fair. An external microphone would improve results."
	default:
		return "Poor microphone quality. Use a headset or external microphone in a quiet room."
	}
}
