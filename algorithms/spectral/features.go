package spectral

// FeatureParams configures the spectral feature extractor
type FeatureParams struct {
	RolloffThreshold float64         `json:"rolloff_threshold" yaml:"rolloff_threshold"`
	SlopeMaxFreq     float64         `json:"slope_max_freq" yaml:"slope_max_freq"`
	Sibilance        SibilanceParams `json:"sibilance" yaml:"sibilance"`
}

// DefaultFeatureParams returns a 95% rolloff, 8 kHz slope range and the
// default sibilance band
func DefaultFeatureParams() FeatureParams {
	return FeatureParams{
		RolloffThreshold: DefaultRolloffThreshold,
		SlopeMaxFreq:     DefaultSlopeMaxFreq,
		Sibilance:        DefaultSibilanceParams(),
	}
}

// Features holds the per-frame spectral descriptors
type Features struct {
	CentroidHz float64         `json:"centroid_hz"`
	RolloffHz  float64         `json:"rolloff_hz"`
	Sibilance  SibilanceResult `json:"sibilance"`
	SPI        float64         `json:"spi"`
	Slope      float64         `json:"slope"` // dB per decade
}

// FeatureExtractor bundles the spectral calculators for one sample rate.
// It holds no mutable state and may be shared between goroutines.
type FeatureExtractor struct {
	params    FeatureParams
	centroid  *SpectralCentroid
	rolloff   *SpectralRolloff
	slope     *SpectralSlope
	spi       *SoftPhonationIndex
	sibilance *SibilanceDetector
}

// NewFeatureExtractor creates an extractor
func NewFeatureExtractor(sampleRate int, params FeatureParams) *FeatureExtractor {
	if params.RolloffThreshold <= 0 || params.RolloffThreshold > 1 {
		params.RolloffThreshold = DefaultRolloffThreshold
	}
	if params.SlopeMaxFreq <= 0 {
		params.SlopeMaxFreq = DefaultSlopeMaxFreq
	}

	return &FeatureExtractor{
		params:    params,
		centroid:  NewSpectralCentroid(sampleRate),
		rolloff:   NewSpectralRolloff(sampleRate),
		slope:     NewSpectralSlopeWithRange(sampleRate, 1, params.SlopeMaxFreq),
		spi:       NewSoftPhonationIndex(sampleRate),
		sibilance: NewSibilanceDetectorWithParams(sampleRate, params.Sibilance),
	}
}

// Extract computes all features. frame is the time-domain frame the
// half magnitude spectrum was derived from.
func (fe *FeatureExtractor) Extract(frame, spectrum []float64) Features {
	return Features{
		CentroidHz: fe.centroid.Compute(spectrum),
		RolloffHz:  fe.rolloff.Compute(spectrum, fe.params.RolloffThreshold),
		Sibilance:  fe.sibilance.Detect(frame, spectrum),
		SPI:        fe.spi.Compute(spectrum),
		Slope:      fe.slope.Compute(spectrum),
	}
}
