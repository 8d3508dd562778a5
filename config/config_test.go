package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, Validate(cfg))
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 0.15, cfg.Pitch.Threshold)
	assert.Equal(t, 12, cfg.LPC.Order)
	assert.Equal(t, 0.97, cfg.LPC.PreEmphasis)
	assert.Equal(t, 2048, cfg.Cepstral.FFTSize)
	assert.Equal(t, 0.95, cfg.Spectral.RolloffThreshold)
	assert.Equal(t, 0.05, cfg.Perturbation.WindowSeconds)
	assert.Equal(t, 3*time.Second, cfg.Calibration.Duration)
}

func TestLoadFromReaderOverlaysDefaults(t *testing.T) {
	doc := `
sample_rate: 44100
pitch:
  threshold: 0.2
lpc:
  order: 16
calibration:
  duration: 1s
log:
  level: debug
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 0.2, cfg.Pitch.Threshold)
	assert.Equal(t, 800.0, cfg.Pitch.MaxFreq, "untouched fields keep defaults")
	assert.Equal(t, 16, cfg.LPC.Order)
	assert.Equal(t, 512, cfg.LPC.EnvelopePoints)
	assert.Equal(t, time.Second, cfg.Calibration.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)

	opts := cfg.AnalyzerOptions()
	assert.Equal(t, 16, opts.LPC.Order)
	assert.Equal(t, 0.2, opts.Pitch.Threshold)
}

func TestLoadFromReaderEmptyDocument(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromReaderRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("pitch:\n  treshold: 0.2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "treshold")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	doc := `
sample_rate: 0
lpc:
  order: 0
cepstral:
  fft_size: 1000
calibration:
  flatness_threshold_db: -1
log:
  level: loud
`
	_, err := LoadFromReader(strings.NewReader(doc))
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"sample_rate must be positive",
		"lpc.order",
		"cepstral.fft_size",
		"calibration.flatness_threshold_db",
		"log.level",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"pitch range", func(c *Config) { c.Pitch.MinFreq = 900 }, "pitch.min_freq"},
		{"sibilance band", func(c *Config) { c.Spectral.Sibilance.HighFreq = 1000 }, "spectral.sibilance band"},
		{"sibilance above nyquist", func(c *Config) { c.SampleRate = 8000 }, "above Nyquist"},
		{"hop fraction", func(c *Config) { c.Perturbation.HopFraction = 2 }, "perturbation.hop_fraction"},
		{"calibration band", func(c *Config) { c.Calibration.MidBand.MaxHz = 100 }, "calibration.mid_band"},
		{"duration", func(c *Config) { c.Calibration.Duration = 0 }, "calibration.duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_rate: 16000\nspectral:\n  sibilance:\n    low_freq: 3000\n    high_freq: 7900\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, 3000.0, cfg.Spectral.Sibilance.LowFreq)
	assert.Equal(t, 0.4, cfg.Spectral.Sibilance.MinScore)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config: open")
}
