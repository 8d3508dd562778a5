package tonal

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Default YIN parameters
const (
	DefaultYinThreshold = 0.15
	DefaultMinPitchHz   = 50.0
	DefaultMaxPitchHz   = 800.0
)

// PitchEstimate is the result of one pitch detection. When Voiced is false
// no pitch was found and Frequency and Confidence are zero.
type PitchEstimate struct {
	Frequency  float64 `json:"frequency_hz"` // Fundamental frequency (Hz), within [MinFreq, MaxFreq]
	Confidence float64 `json:"confidence"`   // 1 - CMNDF at the winning lag (0-1)
	Voiced     bool    `json:"voiced"`
}

// NoPitch is the "none" estimate
func NoPitch() PitchEstimate {
	return PitchEstimate{}
}

// PitchParams contains parameters for pitch detection
type PitchParams struct {
	Threshold float64 `json:"threshold" yaml:"threshold"` // CMNDF threshold (0.1-0.5)
	MinFreq   float64 `json:"min_freq" yaml:"min_freq"`   // Minimum accepted frequency (Hz)
	MaxFreq   float64 `json:"max_freq" yaml:"max_freq"`   // Maximum accepted frequency (Hz)
}

// DefaultPitchParams returns threshold 0.15 over 50-800 Hz
func DefaultPitchParams() PitchParams {
	return PitchParams{
		Threshold: DefaultYinThreshold,
		MinFreq:   DefaultMinPitchHz,
		MaxFreq:   DefaultMaxPitchHz,
	}
}

// PitchTracker estimates the fundamental frequency of a raw (unwindowed)
// frame with the YIN algorithm.
//
// References:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
type PitchTracker struct {
	sampleRate int
	params     PitchParams
}

// NewPitchTracker creates a tracker with default parameters
func NewPitchTracker(sampleRate int) *PitchTracker {
	return NewPitchTrackerWithParams(sampleRate, DefaultPitchParams())
}

// NewPitchTrackerWithParams creates a tracker with custom parameters.
// Zero fields fall back to defaults.
func NewPitchTrackerWithParams(sampleRate int, params PitchParams) *PitchTracker {
	defaults := DefaultPitchParams()
	if params.Threshold <= 0 {
		params.Threshold = defaults.Threshold
	}
	if params.MinFreq <= 0 {
		params.MinFreq = defaults.MinFreq
	}
	if params.MaxFreq <= 0 {
		params.MaxFreq = defaults.MaxFreq
	}

	return &PitchTracker{
		sampleRate: sampleRate,
		params:     params,
	}
}

// Detect runs YIN on frame. It returns NoPitch when no lag dips under the
// threshold or when the refined frequency is outside [MinFreq, MaxFreq].
func (pt *PitchTracker) Detect(frame []float64) PitchEstimate {
	if pt.sampleRate <= 0 {
		return NoPitch()
	}

	cmndf := CumulativeMeanNormalizedDifference(frame)
	halfN := len(cmndf)
	if halfN < 3 {
		return NoPitch()
	}

	tau := -1
	for t := 2; t < halfN; t++ {
		if cmndf[t] < pt.params.Threshold {
			// Walk down to the bottom of this dip
			for t+1 < halfN && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}

	if tau < 0 {
		return NoPitch()
	}

	period := common.ParabolicPeak(cmndf, tau)
	if period <= 0 {
		return NoPitch()
	}

	frequency := float64(pt.sampleRate) / period
	if frequency < pt.params.MinFreq || frequency > pt.params.MaxFreq {
		return NoPitch()
	}

	return PitchEstimate{
		Frequency:  frequency,
		Confidence: common.Clamp(1.0-cmndf[tau], 0, 1),
		Voiced:     true,
	}
}

// DifferenceFunction computes d(τ) = Σ_{i<N/2} (x[i] - x[i+τ])² for τ in [0, N/2)
func DifferenceFunction(frame []float64) []float64 {
	halfN := len(frame) / 2

	diff := make([]float64, halfN)
	for tau := range halfN {
		sum := 0.0
		for j := range halfN {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	return diff
}

// CumulativeMeanNormalizedDifference divides d(τ) by its running mean over
// 1..τ. CMNDF[0] is 1, and lags where the running sum is still zero (silence)
// are also 1.
func CumulativeMeanNormalizedDifference(frame []float64) []float64 {
	diff := DifferenceFunction(frame)
	if len(diff) == 0 {
		return diff
	}

	cmndf := make([]float64, len(diff))
	cmndf[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau < len(diff); tau++ {
		runningSum += diff[tau]
		if runningSum <= 0 {
			cmndf[tau] = 1.0
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / runningSum
	}

	return cmndf
}

// PitchPoint is one entry of a pitch series
type PitchPoint struct {
	Time       float64 `json:"time"`         // Window start (seconds)
	Frequency  float64 `json:"frequency_hz"` // 0 when unvoiced
	Confidence float64 `json:"confidence"`
	Voiced     bool    `json:"voiced"`
}

// Series runs Detect over consecutive non-overlapping windows of
// windowSeconds and returns one point per full window.
func (pt *PitchTracker) Series(signal []float64, windowSeconds float64) []PitchPoint {
	windowSize := int(float64(pt.sampleRate) * windowSeconds)
	if windowSize <= 0 {
		return []PitchPoint{}
	}

	points := make([]PitchPoint, 0, len(signal)/windowSize)
	for start := 0; start+windowSize <= len(signal); start += windowSize {
		estimate := pt.Detect(signal[start : start+windowSize])
		points = append(points, PitchPoint{
			Time:       float64(start) / float64(pt.sampleRate),
			Frequency:  estimate.Frequency,
			Confidence: estimate.Confidence,
			Voiced:     estimate.Voiced,
		})
	}

	return points
}
