package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHammingCoefficients(t *testing.T) {
	coeffs := ApplyHamming([]float64{1, 1, 1, 1, 1})

	require.Len(t, coeffs, 5)
	assert.InDelta(t, 0.08, coeffs[0], 1e-12)
	assert.InDelta(t, 0.54, coeffs[1], 1e-12)
	assert.InDelta(t, 1.0, coeffs[2], 1e-12)
	assert.InDelta(t, coeffs[1], coeffs[3], 1e-12)
	assert.InDelta(t, 0.08, coeffs[4], 1e-12)

	assert.Equal(t, []float64{1}, NewHamming(1).coefficients)
	assert.Empty(t, NewHamming(0).coefficients)
}

func TestHammingApply(t *testing.T) {
	signal := []float64{1, 1, 1, 1, 1}
	windowed := ApplyHamming(signal)

	assert.Equal(t, NewHamming(5).coefficients, windowed)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, signal, "Apply must not modify its input")

	assert.Nil(t, NewHamming(4).Apply(signal))
}
