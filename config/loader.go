package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/calibration"
	"github.com/RyanBlaney/sonido-voz/logging"
)

// Load reads the YAML file at path over Default and validates the result
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over Default and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %d", cfg.SampleRate))
	}
	nyquist := float64(cfg.SampleRate) / 2

	// Pitch
	if cfg.Pitch.Threshold <= 0 || cfg.Pitch.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("pitch.threshold must be in (0, 1), got %g", cfg.Pitch.Threshold))
	}
	if cfg.Pitch.MinFreq <= 0 || cfg.Pitch.MinFreq >= cfg.Pitch.MaxFreq {
		errs = append(errs, fmt.Errorf("pitch.min_freq (%g) must be positive and below pitch.max_freq (%g)", cfg.Pitch.MinFreq, cfg.Pitch.MaxFreq))
	}

	// LPC
	if cfg.LPC.Order < 1 {
		errs = append(errs, fmt.Errorf("lpc.order must be at least 1, got %d", cfg.LPC.Order))
	}
	if cfg.LPC.EnvelopePoints < 2 {
		errs = append(errs, fmt.Errorf("lpc.envelope_points must be at least 2, got %d", cfg.LPC.EnvelopePoints))
	}
	if cfg.LPC.PreEmphasis < 0 || cfg.LPC.PreEmphasis >= 1 {
		errs = append(errs, fmt.Errorf("lpc.pre_emphasis must be in [0, 1), got %g", cfg.LPC.PreEmphasis))
	}

	// Cepstral
	if !common.IsPowerOfTwo(cfg.Cepstral.FFTSize) {
		errs = append(errs, fmt.Errorf("cepstral.fft_size must be a power of two, got %d", cfg.Cepstral.FFTSize))
	}
	if cfg.Cepstral.MinPitchHz <= 0 || cfg.Cepstral.MinPitchHz >= cfg.Cepstral.MaxPitchHz {
		errs = append(errs, fmt.Errorf("cepstral.min_pitch_hz (%g) must be positive and below cepstral.max_pitch_hz (%g)", cfg.Cepstral.MinPitchHz, cfg.Cepstral.MaxPitchHz))
	}
	if cfg.Cepstral.BaselineHalfWidth < 1 {
		errs = append(errs, fmt.Errorf("cepstral.baseline_half_width must be at least 1, got %d", cfg.Cepstral.BaselineHalfWidth))
	}

	// Spectral
	if cfg.Spectral.RolloffThreshold <= 0 || cfg.Spectral.RolloffThreshold > 1 {
		errs = append(errs, fmt.Errorf("spectral.rolloff_threshold must be in (0, 1], got %g", cfg.Spectral.RolloffThreshold))
	}
	if s := cfg.Spectral.Sibilance; s.LowFreq <= 0 || s.LowFreq >= s.HighFreq {
		errs = append(errs, fmt.Errorf("spectral.sibilance band [%g, %g] is invalid", s.LowFreq, s.HighFreq))
	} else if cfg.SampleRate > 0 && s.LowFreq >= nyquist {
		errs = append(errs, fmt.Errorf("spectral.sibilance.low_freq %g is above Nyquist (%g)", s.LowFreq, nyquist))
	}

	// Perturbation
	p := cfg.Perturbation
	if p.WindowSeconds <= 0 {
		errs = append(errs, fmt.Errorf("perturbation.window_seconds must be positive, got %g", p.WindowSeconds))
	}
	if p.HopFraction <= 0 || p.HopFraction > 1 {
		errs = append(errs, fmt.Errorf("perturbation.hop_fraction must be in (0, 1], got %g", p.HopFraction))
	}
	if p.MinConfidence < 0 || p.MinConfidence >= 1 {
		errs = append(errs, fmt.Errorf("perturbation.min_confidence must be in [0, 1), got %g", p.MinConfidence))
	}
	if p.MinPitchHz <= 0 || p.MinPitchHz >= p.MaxPitchHz {
		errs = append(errs, fmt.Errorf("perturbation.min_pitch_hz (%g) must be positive and below perturbation.max_pitch_hz (%g)", p.MinPitchHz, p.MaxPitchHz))
	}

	// Calibration
	c := cfg.Calibration
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("calibration.duration must be positive, got %s", c.Duration))
	}
	bands := []struct {
		name string
		band calibration.Band
	}{
		{"low_band", c.LowBand},
		{"mid_band", c.MidBand},
		{"high_band", c.HighBand},
	}
	for _, b := range bands {
		if b.band.MinHz < 0 || b.band.MinHz >= b.band.MaxHz {
			errs = append(errs, fmt.Errorf("calibration.%s [%g, %g] is invalid", b.name, b.band.MinHz, b.band.MaxHz))
		}
	}
	if c.FlatnessThresholdDB <= 0 {
		errs = append(errs, fmt.Errorf("calibration.flatness_threshold_db must be positive, got %g", c.FlatnessThresholdDB))
	}

	// Logging
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
