package speech

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/filters"
	"github.com/RyanBlaney/sonido-voz/algorithms/stats"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
)

// Default LPC parameters
const (
	DefaultLPCOrder       = 12
	DefaultEnvelopePoints = 512
	DefaultMinFormantHz   = 200.0

	// EnvelopeFloorDB fills the envelope when the prediction gain vanishes
	EnvelopeFloorDB = -100.0

	// minPredictionError guards the Levinson-Durbin division
	minPredictionError = 1e-10
)

// LPCParams configures LPC analysis
type LPCParams struct {
	Order          int     `json:"order" yaml:"order"`                     // Prediction order
	EnvelopePoints int     `json:"envelope_points" yaml:"envelope_points"` // Envelope samples over [0, π]
	PreEmphasis    float64 `json:"pre_emphasis" yaml:"pre_emphasis"`       // Pre-emphasis coefficient
	MinFormantHz   float64 `json:"min_formant_hz" yaml:"min_formant_hz"`   // Peaks at or below are ignored
}

// DefaultLPCParams returns order 12, 512 envelope points, α=0.97, 200 Hz floor
func DefaultLPCParams() LPCParams {
	return LPCParams{
		Order:          DefaultLPCOrder,
		EnvelopePoints: DefaultEnvelopePoints,
		PreEmphasis:    filters.DefaultPreEmphasisCoefficient,
		MinFormantHz:   DefaultMinFormantHz,
	}
}

// LPCAnalyzer performs Linear Predictive Coding analysis.
// LPC models the vocal tract as an all-pole filter; peaks of its spectral
// envelope are the formants.
//
// The default order 12 suits rates up to about 16 kHz. At 44.1 or 48 kHz the
// poles spread across the wider band and the lowest peak can land well above
// F1; raise Order or downsample first.
type LPCAnalyzer struct {
	sampleRate  int
	params      LPCParams
	preEmphasis *filters.PreEmphasis
	autocorr    *stats.AutoCorrelation
}

// LPCResult contains LPC analysis results
type LPCResult struct {
	Coefficients    []float64 `json:"coefficients"`     // Predictor coefficients a1..ap, x[n] ≈ Σ a_k x[n-k]
	ReflectionCoeff []float64 `json:"reflection_coeff"` // Reflection coefficients k1..kp
	PredictionError float64   `json:"prediction_error"` // Final prediction error energy E
	Gain            float64   `json:"gain"`             // sqrt(E)
	Envelope        []float64 `json:"envelope"`         // |gain / A(e^jω)| in dB over [0, π]
	Formants        []Formant `json:"formants"`         // Ascending by frequency
	Order           int       `json:"order"`
}

// NewLPCAnalyzer creates an analyzer with default parameters
func NewLPCAnalyzer(sampleRate int) *LPCAnalyzer {
	return NewLPCAnalyzerWithParams(sampleRate, DefaultLPCParams())
}

// NewLPCAnalyzerWithParams creates an analyzer with custom parameters.
// Zero fields fall back to defaults.
func NewLPCAnalyzerWithParams(sampleRate int, params LPCParams) *LPCAnalyzer {
	defaults := DefaultLPCParams()
	if params.Order <= 0 {
		params.Order = defaults.Order
	}
	if params.EnvelopePoints < 2 {
		params.EnvelopePoints = defaults.EnvelopePoints
	}
	if params.PreEmphasis <= 0 {
		params.PreEmphasis = defaults.PreEmphasis
	}
	if params.MinFormantHz <= 0 {
		params.MinFormantHz = defaults.MinFormantHz
	}

	return &LPCAnalyzer{
		sampleRate:  sampleRate,
		params:      params,
		preEmphasis: filters.NewPreEmphasis(params.PreEmphasis),
		autocorr:    stats.NewAutoCorrelation(params.Order),
	}
}

// Analyze pre-emphasises and windows frame, solves for the predictor and
// picks formants from the envelope. Silent or empty frames give a floor
// envelope and no formants.
func (lpc *LPCAnalyzer) Analyze(frame []float64) *LPCResult {
	conditioned := windowing.ApplyHamming(lpc.preEmphasis.ProcessFrame(frame))

	R := lpc.autocorr.Compute(conditioned)
	coeffs, reflection, predErr := LevinsonDurbin(R, lpc.params.Order)

	gain := 0.0
	if predErr > 0 && common.IsFinite(predErr) {
		gain = math.Sqrt(predErr)
	}

	envelope := Envelope(coeffs, gain, lpc.params.EnvelopePoints)

	return &LPCResult{
		Coefficients:    coeffs,
		ReflectionCoeff: reflection,
		PredictionError: predErr,
		Gain:            gain,
		Envelope:        envelope,
		Formants:        PickFormants(envelope, lpc.sampleRate, lpc.params.MinFormantHz),
		Order:           lpc.params.Order,
	}
}

// Formants is a shorthand for Analyze(frame).Formants
func (lpc *LPCAnalyzer) Formants(frame []float64) []Formant {
	return lpc.Analyze(frame).Formants
}

// LevinsonDurbin solves the normal equations for autocorrelation R[0..order].
// It returns predictor coefficients a[1..order] (x[n] ≈ Σ a_k x[n-k]), the
// reflection coefficients and the final prediction error. When the running
// error is near zero the reflection coefficient is taken as 0.
func LevinsonDurbin(R []float64, order int) (coeffs, reflection []float64, predErr float64) {
	coeffs = make([]float64, order)
	reflection = make([]float64, order)
	if order <= 0 || len(R) == 0 {
		return coeffs, reflection, 0
	}

	r := func(i int) float64 {
		if i < len(R) {
			return R[i]
		}
		return 0
	}

	a := make([]float64, order+1)
	prev := make([]float64, order+1)
	E := r(0)

	for i := 1; i <= order; i++ {
		sum := 0.0
		for j := 1; j < i; j++ {
			sum += prev[j] * r(i-j)
		}

		k := 0.0
		if math.Abs(E) >= minPredictionError {
			k = (r(i) - sum) / E
		}
		reflection[i-1] = k

		a[i] = k
		for j := 1; j < i; j++ {
			a[j] = prev[j] - k*prev[i-j]
		}

		E *= 1 - k*k
		copy(prev, a)
	}

	copy(coeffs, a[1:])
	return coeffs, reflection, E
}

// Envelope evaluates |gain / A(e^jω)| in dB at numPoints frequencies spread
// evenly over [0, π], with A(z) = 1 - Σ a_k z^-k. A negligible gain or
// non-finite coefficients give an envelope at EnvelopeFloorDB.
func Envelope(coeffs []float64, gain float64, numPoints int) []float64 {
	envelope := make([]float64, numPoints)
	if numPoints == 0 {
		return envelope
	}

	if gain < minPredictionError || !allFinite(coeffs) {
		for i := range envelope {
			envelope[i] = EnvelopeFloorDB
		}
		return envelope
	}

	denominator := float64(max(numPoints-1, 1))
	for i := range numPoints {
		omega := math.Pi * float64(i) / denominator

		realPart := 1.0
		imagPart := 0.0
		for k, ak := range coeffs {
			angle := omega * float64(k+1)
			realPart -= ak * math.Cos(angle)
			imagPart += ak * math.Sin(angle)
		}

		magA := math.Sqrt(realPart*realPart + imagPart*imagPart)
		envelope[i] = 20 * math.Log10(gain/(magA+common.Epsilon))
	}

	return envelope
}

// PredictionResidual filters signal through A(z) and returns the residual
func PredictionResidual(signal, coeffs []float64) []float64 {
	residual := make([]float64, len(signal))

	for n := range signal {
		prediction := 0.0
		for k := 1; k <= len(coeffs) && k <= n; k++ {
			prediction += coeffs[k-1] * signal[n-k]
		}
		residual[n] = signal[n] - prediction
	}

	return residual
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !common.IsFinite(v) {
			return false
		}
	}
	return true
}
