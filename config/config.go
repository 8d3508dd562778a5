// Package config holds the tunable parameters of the voice analyzers and the
// calibration run, with YAML loading and validation.
package config

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/speech"
	"github.com/RyanBlaney/sonido-voz/algorithms/tonal"
	"github.com/RyanBlaney/sonido-voz/analysis"
	"github.com/RyanBlaney/sonido-voz/calibration"
)

// DefaultSampleRate is used when no sample rate is configured
const DefaultSampleRate = 48000

// Config is the full configuration
type Config struct {
	SampleRate   int                       `json:"sample_rate" yaml:"sample_rate"`
	Pitch        tonal.PitchParams         `json:"pitch" yaml:"pitch"`
	LPC          speech.LPCParams          `json:"lpc" yaml:"lpc"`
	Cepstral     speech.CepstralParams     `json:"cepstral" yaml:"cepstral"`
	Spectral     spectral.FeatureParams    `json:"spectral" yaml:"spectral"`
	Perturbation speech.PerturbationParams `json:"perturbation" yaml:"perturbation"`
	Calibration  calibration.Params        `json:"calibration" yaml:"calibration"`
	Log          LogConfig                 `json:"log" yaml:"log"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `json:"level" yaml:"level"` // debug, info, warn, error
	Colors *bool  `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// Default returns the standard parameters of every component
func Default() *Config {
	options := analysis.DefaultOptions()

	return &Config{
		SampleRate:   DefaultSampleRate,
		Pitch:        options.Pitch,
		LPC:          options.LPC,
		Cepstral:     options.Cepstral,
		Spectral:     options.Spectral,
		Perturbation: options.Perturbation,
		Calibration:  calibration.DefaultParams(),
		Log:          LogConfig{Level: "info"},
	}
}

// AnalyzerOptions returns the frame analyzer parameters
func (c *Config) AnalyzerOptions() analysis.Options {
	return analysis.Options{
		Pitch:        c.Pitch,
		LPC:          c.LPC,
		Cepstral:     c.Cepstral,
		Spectral:     c.Spectral,
		Perturbation: c.Perturbation,
	}
}
