// Package analysis composes the per-frame voice analyzers into one metrics
// snapshot per audio frame.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/speech"
	"github.com/RyanBlaney/sonido-voz/algorithms/tonal"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
	"github.com/RyanBlaney/sonido-voz/logging"
)

var (
	ErrInvalidSampleRate  = errors.New("analysis: sample rate must be positive")
	ErrSampleRateMismatch = errors.New("analysis: frame sample rate does not match analyzer")
)

// AudioFrame is a block of samples in [-1, 1] with its sample rate
type AudioFrame struct {
	Samples    []float64
	SampleRate int
}

// Options carries the parameters of every analyzer in the pipeline
type Options struct {
	Pitch        tonal.PitchParams         `json:"pitch" yaml:"pitch"`
	LPC          speech.LPCParams          `json:"lpc" yaml:"lpc"`
	Cepstral     speech.CepstralParams     `json:"cepstral" yaml:"cepstral"`
	Spectral     spectral.FeatureParams    `json:"spectral" yaml:"spectral"`
	Perturbation speech.PerturbationParams `json:"perturbation" yaml:"perturbation"`
}

// DefaultOptions returns the default parameters of every analyzer
func DefaultOptions() Options {
	return Options{
		Pitch:        tonal.DefaultPitchParams(),
		LPC:          speech.DefaultLPCParams(),
		Cepstral:     speech.DefaultCepstralParams(),
		Spectral:     spectral.DefaultFeatureParams(),
		Perturbation: speech.DefaultPerturbationParams(),
	}
}

// VoiceQualityReport groups the periodicity and spectral-balance measures.
// Nil perturbation fields mean the measure was not available for the frame.
type VoiceQualityReport struct {
	CPP               float64                  `json:"cpp"`
	CPPQuality        speech.CPPQuality        `json:"cpp_quality"`
	CPPInterpretation string                   `json:"cpp_interpretation"`
	JitterPct         *float64                 `json:"jitter_pct"`
	ShimmerPct        *float64                 `json:"shimmer_pct"`
	HNRDB             *float64                 `json:"hnr_db"`
	Sibilance         spectral.SibilanceResult `json:"sibilance"`
	SPI               float64                  `json:"spi"`
	SpectralSlope     float64                  `json:"spectral_slope"`
}

// Metrics is the immutable result of analysing one frame
type Metrics struct {
	Pitch        tonal.PitchEstimate `json:"pitch"`
	Formants     []speech.Formant    `json:"formants"`
	Vowel        speech.Vowel        `json:"vowel,omitempty"`
	VoiceQuality VoiceQualityReport  `json:"voice_quality"`
	CentroidHz   float64             `json:"centroid_hz"`
	RolloffHz    float64             `json:"rolloff_hz"`
	RMS          float64             `json:"rms"`
	LevelDB      float64             `json:"level_db"`
}

// FrameAnalyzer runs the full pipeline for one sample rate. It is immutable
// after construction and safe for concurrent use.
type FrameAnalyzer struct {
	sampleRate   int
	options      Options
	fft          *spectral.FFT
	pitch        *tonal.PitchTracker
	lpc          *speech.LPCAnalyzer
	cepstral     *speech.CPPAnalyzer
	features     *spectral.FeatureExtractor
	perturbation *speech.PerturbationEstimator
	logger       logging.Logger
}

// NewFrameAnalyzer builds every analyzer for sampleRate
func NewFrameAnalyzer(sampleRate int, options Options) (*FrameAnalyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	return &FrameAnalyzer{
		sampleRate:   sampleRate,
		options:      options,
		fft:          spectral.NewFFT(),
		pitch:        tonal.NewPitchTrackerWithParams(sampleRate, options.Pitch),
		lpc:          speech.NewLPCAnalyzerWithParams(sampleRate, options.LPC),
		cepstral:     speech.NewCPPAnalyzerWithParams(sampleRate, options.Cepstral),
		features:     spectral.NewFeatureExtractor(sampleRate, options.Spectral),
		perturbation: speech.NewPerturbationEstimatorWithParams(sampleRate, options.Perturbation),
		logger: logging.WithFields(logging.Fields{
			"component":   "frame_analyzer",
			"sample_rate": sampleRate,
		}),
	}, nil
}

// SampleRate returns the rate the analyzer was built for
func (fa *FrameAnalyzer) SampleRate() int {
	return fa.sampleRate
}

// Options returns the analyzer parameters
func (fa *FrameAnalyzer) Options() Options {
	return fa.options
}

// Analyze computes all metrics for samples. Non-finite samples are treated
// as 0 and the caller's slice is never modified. It does not fail: frames
// without signal produce the "none" and floor values of each analyzer.
func (fa *FrameAnalyzer) Analyze(samples []float64) Metrics {
	frame := common.Sanitize(samples)

	pitch := fa.pitch.Detect(frame)
	formants := fa.lpc.Formants(frame)

	spectrum := fa.fft.MagnitudeSpectrum(windowing.ApplyHamming(frame))
	features := fa.features.Extract(frame, spectrum)

	cpp := fa.cepstral.Analyze(frame)
	perturbation := fa.perturbation.Analyze(frame)

	rms := common.RMS(frame)

	return Metrics{
		Pitch:    pitch,
		Formants: formants,
		Vowel:    speech.VowelFromFormants(formants),
		VoiceQuality: VoiceQualityReport{
			CPP:               cpp.CPP,
			CPPQuality:        cpp.Quality,
			CPPInterpretation: cpp.Interpretation,
			JitterPct:         perturbation.JitterPct,
			ShimmerPct:        perturbation.ShimmerPct,
			HNRDB:             perturbation.HNRDB,
			Sibilance:         features.Sibilance,
			SPI:               features.SPI,
			SpectralSlope:     features.Slope,
		},
		CentroidHz: features.CentroidHz,
		RolloffHz:  features.RolloffHz,
		RMS:        rms,
		LevelDB:    common.AmplitudeToDB(rms, common.Epsilon),
	}
}

// AnalyzeFrame is Analyze with a check that the frame matches the analyzer's
// sample rate
func (fa *FrameAnalyzer) AnalyzeFrame(frame AudioFrame) (Metrics, error) {
	if frame.SampleRate != fa.sampleRate {
		return Metrics{}, fmt.Errorf("%w: got %d Hz, want %d Hz", ErrSampleRateMismatch, frame.SampleRate, fa.sampleRate)
	}
	return fa.Analyze(frame.Samples), nil
}

// AnalyzeFrames analyses independent frames concurrently, at most GOMAXPROCS
// at a time, and returns metrics in input order. The first error or a
// cancelled ctx stops the batch.
func (fa *FrameAnalyzer) AnalyzeFrames(ctx context.Context, frames []AudioFrame) ([]Metrics, error) {
	results := make([]Metrics, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, frame := range frames {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			metrics, err := fa.AnalyzeFrame(frame)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			results[i] = metrics
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fa.logger.WithContext(ctx).Debug("batch analysed", logging.Fields{
		"frames": len(frames),
	})

	return results, nil
}
