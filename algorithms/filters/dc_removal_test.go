package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDCBlockerRemovesOffset(t *testing.T) {
	sampleRate := 48000
	dc := NewDCBlocker(sampleRate, DefaultDCCutoffHz)
	assert.InDelta(t, 1-2*math.Pi*DefaultDCCutoffHz/float64(sampleRate), dc.pole, 1e-12)

	signal := make([]float64, sampleRate)
	for i := range signal {
		signal[i] = 0.3 + 0.1*math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}

	out := dc.ProcessBuffer(signal)

	// After the filter settles the mean is near zero and the tone survives
	tail := out[sampleRate/2:]
	mean := 0.0
	peak := 0.0
	for _, v := range tail {
		mean += v
		peak = math.Max(peak, math.Abs(v))
	}
	mean /= float64(len(tail))

	assert.InDelta(t, 0, mean, 1e-3)
	assert.InDelta(t, 0.1, peak, 0.005)
}

func TestDCBlockerCarriesState(t *testing.T) {
	dc := NewDCBlocker(16000, 20)

	first := dc.ProcessBuffer([]float64{1, 1, 1})
	second := dc.ProcessBuffer([]float64{1, 1, 1})

	assert.Equal(t, 1.0, first[0])
	assert.Less(t, second[0], first[2], "the step keeps decaying across buffers")
}

func TestDCBlockerPoleClamp(t *testing.T) {
	assert.Equal(t, 0.995, NewDCBlocker(0, 10).pole)
	assert.Equal(t, 0.001, NewDCBlocker(100, 1000).pole)
}
