package stats

import (
	"gonum.org/v1/gonum/floats"
)

// AutoCorrelation computes the raw (unnormalised, biased) autocorrelation
// R[k] = sum_i x[i]*x[i+k] for lags 0..maxLag.
type AutoCorrelation struct {
	maxLag int
}

// NewAutoCorrelation creates a new auto-correlation calculator. A negative
// maxLag means every lag up to len(signal)-1.
func NewAutoCorrelation(maxLag int) *AutoCorrelation {
	return &AutoCorrelation{
		maxLag: maxLag,
	}
}

// Compute returns maxLag+1 correlation values. Lags at or beyond the signal
// length are zero, so the result length never depends on the input length.
func (ac *AutoCorrelation) Compute(signal []float64) []float64 {
	maxLag := ac.maxLag
	if maxLag < 0 {
		maxLag = len(signal) - 1
	}
	if maxLag < 0 {
		return []float64{}
	}

	correlations := make([]float64, maxLag+1)
	n := len(signal)
	for lag := 0; lag <= maxLag && lag < n; lag++ {
		correlations[lag] = floats.Dot(signal[:n-lag], signal[lag:])
	}

	return correlations
}

// PeakInRange returns the index and value of the largest element of data in
// [lo, hi). ok is false when the range is empty after clipping to data.
func PeakInRange(data []float64, lo, hi int) (index int, value float64, ok bool) {
	lo = max(lo, 0)
	hi = min(hi, len(data))
	if lo >= hi {
		return 0, 0, false
	}

	idx := floats.MaxIdx(data[lo:hi])
	return lo + idx, data[lo+idx], true
}
