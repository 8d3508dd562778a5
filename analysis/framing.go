package analysis

// SplitFrames cuts signal into frames of frameSize samples every hopSize
// samples. A trailing partial frame is zero-padded when it holds at least
// half a frame and dropped otherwise. Frames share the backing array of
// signal except for the padded tail.
func SplitFrames(signal []float64, sampleRate, frameSize, hopSize int) []AudioFrame {
	if frameSize <= 0 || len(signal) == 0 {
		return nil
	}
	if hopSize <= 0 {
		hopSize = frameSize
	}

	var frames []AudioFrame
	start := 0
	for ; start+frameSize <= len(signal); start += hopSize {
		frames = append(frames, AudioFrame{
			Samples:    signal[start : start+frameSize : start+frameSize],
			SampleRate: sampleRate,
		})
	}

	if remaining := len(signal) - start; remaining >= frameSize/2 && remaining > 0 {
		padded := make([]float64, frameSize)
		copy(padded, signal[start:])
		frames = append(frames, AudioFrame{Samples: padded, SampleRate: sampleRate})
	}

	return frames
}
