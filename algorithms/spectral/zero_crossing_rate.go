package spectral

// ZeroCrossingRate counts sign changes in a time-domain frame.
// High ZCR indicates fricatives/unvoiced speech, low ZCR indicates voiced speech
type ZeroCrossingRate struct {
	sampleRate int
}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate(sampleRate int) *ZeroCrossingRate {
	return &ZeroCrossingRate{
		sampleRate: sampleRate,
	}
}

// Compute returns the rate as crossings per second
func (zcr *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 || zcr.sampleRate <= 0 {
		return 0.0
	}

	frameDuration := float64(len(frame)) / float64(zcr.sampleRate)
	return float64(countCrossings(frame)) / frameDuration
}

// ComputeNormalized returns crossings divided by the maximum possible
// (len-1), so an alternating signal scores 1.
func (zcr *ZeroCrossingRate) ComputeNormalized(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}
	return float64(countCrossings(frame)) / float64(len(frame)-1)
}

func countCrossings(frame []float64) int {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0 && frame[i] < 0) || (frame[i-1] < 0 && frame[i] >= 0) {
			crossings++
		}
	}
	return crossings
}
