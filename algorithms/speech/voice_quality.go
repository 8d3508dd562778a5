package speech

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/stats"
	"github.com/RyanBlaney/sonido-voz/algorithms/tonal"
)

// PerturbationParams configures jitter, shimmer and HNR estimation
type PerturbationParams struct {
	WindowSeconds float64           `json:"window_seconds" yaml:"window_seconds"` // Jitter pitch window length
	HopFraction   float64           `json:"hop_fraction" yaml:"hop_fraction"`     // Hop as a fraction of the window
	MinConfidence float64           `json:"min_confidence" yaml:"min_confidence"` // Pitch detections at or below are dropped
	MinPitchHz    float64           `json:"min_pitch_hz" yaml:"min_pitch_hz"`     // HNR longest lag = sampleRate/MinPitchHz
	MaxPitchHz    float64           `json:"max_pitch_hz" yaml:"max_pitch_hz"`     // Shortest lag and minimum peak spacing = sampleRate/MaxPitchHz
	Pitch         tonal.PitchParams `json:"pitch" yaml:"pitch"`                   // Tracker used per jitter window
}

// DefaultPerturbationParams returns 50 ms windows with 50% hop, a 0.5
// confidence floor and a 75-600 Hz lag range
func DefaultPerturbationParams() PerturbationParams {
	return PerturbationParams{
		WindowSeconds: 0.05,
		HopFraction:   0.5,
		MinConfidence: 0.5,
		MinPitchHz:    75,
		MaxPitchHz:    600,
		Pitch:         tonal.DefaultPitchParams(),
	}
}

// PerturbationResult holds the cycle-to-cycle measures. A nil field means
// the measure could not be computed for this signal.
type PerturbationResult struct {
	JitterPct  *float64 `json:"jitter_pct"`
	ShimmerPct *float64 `json:"shimmer_pct"`
	HNRDB      *float64 `json:"hnr_db"`
}

// PerturbationEstimator computes jitter, shimmer and harmonics-to-noise
// ratio within a single buffer. Nothing is carried between calls.
type PerturbationEstimator struct {
	sampleRate int
	params     PerturbationParams
	pitch      *tonal.PitchTracker
}

// NewPerturbationEstimator creates an estimator with default parameters
func NewPerturbationEstimator(sampleRate int) *PerturbationEstimator {
	return NewPerturbationEstimatorWithParams(sampleRate, DefaultPerturbationParams())
}

// NewPerturbationEstimatorWithParams creates an estimator with custom
// parameters. Zero fields fall back to defaults.
func NewPerturbationEstimatorWithParams(sampleRate int, params PerturbationParams) *PerturbationEstimator {
	defaults := DefaultPerturbationParams()
	if params.WindowSeconds <= 0 {
		params.WindowSeconds = defaults.WindowSeconds
	}
	if params.HopFraction <= 0 || params.HopFraction > 1 {
		params.HopFraction = defaults.HopFraction
	}
	if params.MinConfidence < 0 {
		params.MinConfidence = defaults.MinConfidence
	}
	if params.MinPitchHz <= 0 {
		params.MinPitchHz = defaults.MinPitchHz
	}
	if params.MaxPitchHz <= 0 {
		params.MaxPitchHz = defaults.MaxPitchHz
	}

	return &PerturbationEstimator{
		sampleRate: sampleRate,
		params:     params,
		pitch:      tonal.NewPitchTrackerWithParams(sampleRate, params.Pitch),
	}
}

// Analyze runs all three estimators
func (pe *PerturbationEstimator) Analyze(signal []float64) PerturbationResult {
	var result PerturbationResult

	if jitter, ok := pe.Jitter(signal); ok {
		result.JitterPct = &jitter
	}
	if shimmer, ok := pe.Shimmer(signal); ok {
		result.ShimmerPct = &shimmer
	}
	if hnr, ok := pe.HNR(signal); ok {
		result.HNRDB = &hnr
	}

	return result
}

// Jitter slides a pitch window across signal, keeps confident detections and
// returns the relative mean absolute period difference in percent. ok is
// false with fewer than two usable periods.
func (pe *PerturbationEstimator) Jitter(signal []float64) (float64, bool) {
	if pe.sampleRate <= 0 {
		return 0, false
	}

	windowSize := int(float64(pe.sampleRate) * pe.params.WindowSeconds)
	hopSize := max(int(float64(windowSize)*pe.params.HopFraction), 1)
	if windowSize <= 0 {
		return 0, false
	}

	var periods []float64
	for start := 0; start+windowSize <= len(signal); start += hopSize {
		estimate := pe.pitch.Detect(signal[start : start+windowSize])
		if estimate.Voiced && estimate.Confidence > pe.params.MinConfidence {
			periods = append(periods, 1.0/estimate.Frequency)
		}
	}

	if len(periods) < 2 {
		return 0, false
	}
	return common.RelativeMeanAbsDiff(periods), true
}

// Shimmer finds positive amplitude peaks at least sampleRate/MaxPitchHz
// samples apart and returns the relative mean absolute peak difference in
// percent. ok is false with fewer than three peaks.
func (pe *PerturbationEstimator) Shimmer(signal []float64) (float64, bool) {
	if pe.sampleRate <= 0 {
		return 0, false
	}

	minDistance := int(float64(pe.sampleRate) / pe.params.MaxPitchHz)
	peaks := AmplitudePeaks(signal, minDistance)
	if len(peaks) < 3 {
		return 0, false
	}

	amplitudes := make([]float64, len(peaks))
	for i, p := range peaks {
		amplitudes[i] = signal[p]
	}

	return common.RelativeMeanAbsDiff(amplitudes), true
}

// HNR returns 10*log10(peak/R[0] + ε) where peak is the largest
// autocorrelation in the lag range [sampleRate/MaxPitchHz, sampleRate/MinPitchHz].
// ok is false when the frame has no energy or the peak is not positive.
func (pe *PerturbationEstimator) HNR(signal []float64) (float64, bool) {
	if pe.sampleRate <= 0 || len(signal) == 0 {
		return 0, false
	}

	minLag := int(float64(pe.sampleRate) / pe.params.MaxPitchHz)
	maxLag := int(float64(pe.sampleRate) / pe.params.MinPitchHz)

	correlations := stats.NewAutoCorrelation(maxLag).Compute(signal)
	if len(correlations) == 0 || correlations[0] <= 0 {
		return 0, false
	}

	_, peak, ok := stats.PeakInRange(correlations, minLag, maxLag+1)
	if !ok || peak <= 0 {
		return 0, false
	}

	hnr := 10 * math.Log10(peak/correlations[0]+common.Epsilon)
	return hnr, common.IsFinite(hnr)
}

// AmplitudePeaks returns indices of positive local maxima. Candidates closer
// than minDistance to the previous kept peak are merged, keeping the larger.
func AmplitudePeaks(signal []float64, minDistance int) []int {
	var peaks []int

	for i := 1; i < len(signal)-1; i++ {
		x := signal[i]
		if x <= 0 || x <= signal[i-1] || x < signal[i+1] {
			continue
		}

		if n := len(peaks); n > 0 && i-peaks[n-1] < minDistance {
			if x > signal[peaks[n-1]] {
				peaks[n-1] = i
			}
			continue
		}

		peaks = append(peaks, i)
	}

	return peaks
}
