package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon is added before any log or division whose argument can reach zero
// on silent input.
const Epsilon = 1e-10

// Basic statistical helpers shared by the analyzers, backed by gonum.

// Mean calculates the arithmetic mean of a slice
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopStandardDeviation calculates the population standard deviation (divides by N)
func PopStandardDeviation(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(stat.PopVariance(data, nil))
}

// Sum adds up all values
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Sum(data)
}

// Energy returns the sum of squares
func Energy(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(Energy(data) / float64(len(data)))
}

// AmplitudeToDB converts a linear amplitude to decibels, offset by eps so
// that zero maps to a finite floor.
func AmplitudeToDB(amplitude, eps float64) float64 {
	return 20 * math.Log10(amplitude+eps)
}

// DBToAmplitude converts decibels back to a linear amplitude
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// RelativeMeanAbsDiff returns mean(|x[i]-x[i-1]|) / mean(x) * 100.
// Used for jitter and shimmer percentages. Needs at least two values.
func RelativeMeanAbsDiff(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	sumDiff := 0.0
	for i := 1; i < len(values); i++ {
		sumDiff += math.Abs(values[i] - values[i-1])
	}

	mean := Mean(values)
	if mean == 0 {
		return 0.0
	}

	return (sumDiff / float64(len(values)-1)) / mean * 100.0
}

// Sanitize returns a copy of data with every NaN or ±Inf replaced by 0
func Sanitize(data []float64) []float64 {
	clean := make([]float64, len(data))
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		clean[i] = v
	}
	return clean
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPowerOfTwo checks if n is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
