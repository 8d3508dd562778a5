package speech

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/stats"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
)

// CepstralParams configures Cepstral Peak Prominence analysis
type CepstralParams struct {
	FFTSize           int     `json:"fft_size" yaml:"fft_size"`                       // Analysis window, taken from the frame centre
	MinPitchHz        float64 `json:"min_pitch_hz" yaml:"min_pitch_hz"`               // Longest quefrency searched = sampleRate/MinPitchHz
	MaxPitchHz        float64 `json:"max_pitch_hz" yaml:"max_pitch_hz"`               // Shortest quefrency searched = sampleRate/MaxPitchHz
	BaselineHalfWidth int     `json:"baseline_half_width" yaml:"baseline_half_width"` // Samples either side of the peak in the baseline
	Scale             float64 `json:"scale" yaml:"scale"`                             // Maps natural-log prominence to a dB-like range
}

// DefaultCepstralParams returns a 2048-point window, 50-600 Hz search,
// ±10 sample baseline and ×20 scaling
func DefaultCepstralParams() CepstralParams {
	return CepstralParams{
		FFTSize:           2048,
		MinPitchHz:        50,
		MaxPitchHz:        600,
		BaselineHalfWidth: 10,
		Scale:             20,
	}
}

// CPPQuality is the display band of a CPP value
type CPPQuality string

const (
	CPPExcellent CPPQuality = "excellent"
	CPPGood      CPPQuality = "good"
	CPPFair      CPPQuality = "fair"
	CPPModerate  CPPQuality = "moderate"
	CPPPoor      CPPQuality = "poor"
)

// CPPResult is a CPP measurement with its display band
type CPPResult struct {
	CPP            float64    `json:"cpp"`            // ≥ 0, approximate dB
	Quality        CPPQuality `json:"quality"`        // Display band
	Interpretation string     `json:"interpretation"` // Human readable band description
	PeakQuefrency  int        `json:"peak_quefrency"` // Cepstrum index of the peak (samples), 0 when none
	PeakValue      float64    `json:"peak_value"`     // Raw cepstrum value at the peak
	Baseline       float64    `json:"baseline"`       // Local mean around the peak
	PeakPitchHz    float64    `json:"peak_pitch_hz"`  // sampleRate / PeakQuefrency, 0 when none
}

// CPPAnalyzer measures Cepstral Peak Prominence, the height of the
// rahmonic peak above its surroundings in the real cepstrum. Clear, periodic
// voices score high; breathy or rough voices score low.
//
// The baseline is the mean of the cepstrum in a small window around the
// peak rather than the regression line over the whole quefrency axis used by
// Hillenbrand et al. (1994), and the ×20 scaling is heuristic. Values are
// comparable between frames of this analyzer, not with clinical CPP norms.
type CPPAnalyzer struct {
	sampleRate int
	params     CepstralParams
	fft        *spectral.FFT
}

// NewCPPAnalyzer creates an analyzer with default parameters
func NewCPPAnalyzer(sampleRate int) *CPPAnalyzer {
	return NewCPPAnalyzerWithParams(sampleRate, DefaultCepstralParams())
}

// NewCPPAnalyzerWithParams creates an analyzer with custom parameters.
// Zero fields fall back to defaults.
func NewCPPAnalyzerWithParams(sampleRate int, params CepstralParams) *CPPAnalyzer {
	defaults := DefaultCepstralParams()
	if params.FFTSize <= 0 {
		params.FFTSize = defaults.FFTSize
	}
	if params.MinPitchHz <= 0 {
		params.MinPitchHz = defaults.MinPitchHz
	}
	if params.MaxPitchHz <= 0 {
		params.MaxPitchHz = defaults.MaxPitchHz
	}
	if params.BaselineHalfWidth <= 0 {
		params.BaselineHalfWidth = defaults.BaselineHalfWidth
	}
	if params.Scale <= 0 {
		params.Scale = defaults.Scale
	}

	return &CPPAnalyzer{
		sampleRate: sampleRate,
		params:     params,
		fft:        spectral.NewFFT(),
	}
}

// Compute returns only the CPP value
func (ca *CPPAnalyzer) Compute(frame []float64) float64 {
	return ca.Analyze(frame).CPP
}

// Analyze measures CPP on the FFTSize samples at the centre of frame.
// Frames shorter than FFTSize, silent frames and an invalid sample rate give
// CPP 0.
func (ca *CPPAnalyzer) Analyze(frame []float64) CPPResult {
	cepstrum := ca.Cepstrum(frame)
	if len(cepstrum) == 0 {
		return newCPPResult(0)
	}

	lo := int(float64(ca.sampleRate) / ca.params.MaxPitchHz)
	hi := int(float64(ca.sampleRate) / ca.params.MinPitchHz)
	hi = min(hi, len(cepstrum)/2)

	peakIdx, peakValue, ok := stats.PeakInRange(cepstrum, lo, hi+1)
	if !ok {
		return newCPPResult(0)
	}

	baseline := localBaseline(cepstrum, peakIdx, ca.params.BaselineHalfWidth)
	cpp := math.Max(0, (peakValue-baseline)*ca.params.Scale)

	result := newCPPResult(cpp)
	result.PeakQuefrency = peakIdx
	result.PeakValue = peakValue
	result.Baseline = baseline
	if peakIdx > 0 {
		result.PeakPitchHz = float64(ca.sampleRate) / float64(peakIdx)
	}
	return result
}

// Cepstrum returns the real cepstrum of the Hamming-windowed analysis
// window: inverse transform of log(|X| + ε) over the full symmetric spectrum.
// It returns nil when no measurement is possible.
func (ca *CPPAnalyzer) Cepstrum(frame []float64) []float64 {
	if ca.sampleRate <= 0 || len(frame) < ca.params.FFTSize {
		return nil
	}

	start := (len(frame) - ca.params.FFTSize) / 2
	window := frame[start : start+ca.params.FFTSize]
	if common.Energy(window) == 0 {
		return nil
	}

	magnitudes := ca.fft.FullMagnitudeSpectrum(windowing.ApplyHamming(window))

	re := make([]float64, len(magnitudes))
	im := make([]float64, len(magnitudes))
	for i, mag := range magnitudes {
		re[i] = math.Log(mag + common.Epsilon)
	}

	ca.fft.Inverse(re, im)
	return re
}

// localBaseline averages cepstrum over [peak-halfWidth, peak+halfWidth],
// skipping the peak itself
func localBaseline(cepstrum []float64, peak, halfWidth int) float64 {
	start := max(0, peak-halfWidth)
	end := min(len(cepstrum)-1, peak+halfWidth)

	sum := 0.0
	count := 0
	for i := start; i <= end; i++ {
		if i == peak {
			continue
		}
		sum += cepstrum[i]
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func newCPPResult(cpp float64) CPPResult {
	quality, interpretation := ClassifyCPP(cpp)
	return CPPResult{
		CPP:            cpp,
		Quality:        quality,
		Interpretation: interpretation,
	}
}

// ClassifyCPP maps a CPP value onto its display band:
// >10 excellent, 8-10 good, 6-8 fair, 4-6 moderate, <4 poor.
func ClassifyCPP(cpp float64) (CPPQuality, string) {
	switch {
	case cpp > 10:
		return CPPExcellent, "Clear, resonant voice"
	case cpp > 8:
		return CPPGood, "Good voice quality"
	case cpp > 6:
		return CPPFair, "Mild breathiness"
	case cpp > 4:
		return CPPModerate, "Moderate breathiness"
	default:
		return CPPPoor, "Significant breathiness or roughness"
	}
}
