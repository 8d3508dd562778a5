package main

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/analysis"
	"github.com/RyanBlaney/sonido-voz/calibration"
	"github.com/RyanBlaney/sonido-voz/config"
	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
)

func TestFileSourceAdvancesPerTick(t *testing.T) {
	pcm := make([]float64, 48000)
	for i := range pcm {
		pcm[i] = float64(i)
	}

	src := newFileSource(pcm, 48000, 20*time.Millisecond)
	assert.Equal(t, 48000, src.SampleRate())

	first := src.TimeDomain()
	second := src.TimeDomain()
	require.Len(t, first, analyserSize)
	assert.Equal(t, 0.0, first[0])
	assert.Equal(t, 960.0, second[0])
	assert.Len(t, src.FrequencyDomain(), analyserSize/2)
}

func TestFileSourceSilenceSpectrumIsFloor(t *testing.T) {
	src := newFileSource(make([]float64, 4096), 16000, 10*time.Millisecond)
	src.TimeDomain()

	for _, db := range src.FrequencyDomain() {
		assert.InDelta(t, -200, db, 1e-6)
	}
}

func TestCalibrateReplay(t *testing.T) {
	logging.SetGlobalLogger(nil)
	t.Cleanup(func() { logging.SetGlobalLogger(logging.NewDefaultLogger()) })

	rng := rand.New(rand.NewSource(7))
	pcm := make([]float64, 48000*2)
	for i := range pcm {
		pcm[i] = 0.0005 * rng.NormFloat64()
	}

	cmd := &CalibrateCmd{Tick: 20 * time.Millisecond}
	src := newFileSource(pcm, 48000, cmd.Tick)

	params := calibration.DefaultParams()
	params.Duration = calibration.QuickDuration
	session := calibration.NewSession(src, params)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan time.Time)
	go cmd.feedTicks(ctx, src, ticks)

	report, err := calibration.Run(ctx, session, ticks)
	require.NoError(t, err)

	// 1 s of 20 ms ticks
	assert.Equal(t, 50, report.Frames)
	assert.InDelta(t, 20*math.Log10(0.0005+1e-4), report.NoiseFloorDB, 1.0)
	assert.Equal(t, calibration.EnvironmentQuiet, report.Environment)
}

func TestFileSourceBlocks(t *testing.T) {
	// 20 ms at 48 kHz is a 960-sample hop
	src := newFileSource(make([]float64, 3968), 48000, 20*time.Millisecond)
	assert.Equal(t, 3, src.Blocks())

	src.TimeDomain()
	assert.Equal(t, 2, src.Blocks())

	assert.Zero(t, newFileSource(make([]float64, analyserSize-1), 48000, 20*time.Millisecond).Blocks())
	assert.Equal(t, 1, newFileSource(make([]float64, analyserSize), 48000, 20*time.Millisecond).Blocks())
}

func TestCalibrateReplayStopsAtLastFullBlock(t *testing.T) {
	logging.SetGlobalLogger(nil)
	t.Cleanup(func() { logging.SetGlobalLogger(logging.NewDefaultLogger()) })

	rng := rand.New(rand.NewSource(3))
	pcm := make([]float64, 3968)
	for i := range pcm {
		pcm[i] = 0.01 * rng.NormFloat64()
	}

	cmd := &CalibrateCmd{Tick: 20 * time.Millisecond}
	var first *calibration.Report
	for range 50 {
		src := newFileSource(pcm, 48000, cmd.Tick)
		session := calibration.NewSession(src, calibration.DefaultParams())

		ctx, cancel := context.WithCancel(context.Background())
		ticks := make(chan time.Time)
		go cmd.feedTicks(ctx, src, ticks)

		report, err := calibration.Run(ctx, session, ticks)
		cancel()
		require.NoError(t, err)
		require.Equal(t, 3, report.Frames)

		if first == nil {
			first = report
			continue
		}
		assert.Equal(t, first.NoiseFloorDB, report.NoiseFloorDB)
		assert.Equal(t, first.QualityScore, report.QualityScore)
	}
}

func TestCheckSampleRate(t *testing.T) {
	cfg := config.Default()

	assert.NoError(t, checkSampleRate(&transcode.AudioData{SampleRate: 48000}, cfg))

	err := checkSampleRate(&transcode.AudioData{SampleRate: 16000, Source: "voice.wav"}, cfg)
	require.ErrorIs(t, err, analysis.ErrSampleRateMismatch)
	assert.Contains(t, err.Error(), "--sample-rate 16000")
}

func TestLoadConfigSampleRateOverride(t *testing.T) {
	t.Cleanup(func() { logging.SetGlobalLogger(logging.NewDefaultLogger()) })

	cfg, err := loadConfig("", "error", 16000)
	require.NoError(t, err)
	assert.Equal(t, 16000, cfg.SampleRate)

	cfg, err = loadConfig("", "error", 0)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSampleRate, cfg.SampleRate)

	// The 4 kHz sibilance band has no room below an 8 kHz rate's Nyquist
	_, err = loadConfig("", "error", 8000)
	assert.ErrorContains(t, err, "above Nyquist")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	env := &runEnv{ctx: context.Background(), cfg: config.Default(), stdout: &buf}

	require.NoError(t, (&VersionCmd{}).Run(env))
	assert.Contains(t, buf.String(), version)
}
