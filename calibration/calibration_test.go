package calibration

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/logging"
)

const (
	testSampleRate = 48000
	testBins       = 1024
)

type constantSource struct {
	sampleRate int
	amplitude  float64
	spectrum   []float64
}

func newConstantSource(amplitude, levelDB float64) *constantSource {
	spectrum := make([]float64, testBins)
	for i := range spectrum {
		spectrum[i] = levelDB
	}
	return &constantSource{sampleRate: testSampleRate, amplitude: amplitude, spectrum: spectrum}
}

func (c *constantSource) SampleRate() int { return c.sampleRate }

func (c *constantSource) TimeDomain() []float64 {
	block := make([]float64, 2*testBins)
	for i := range block {
		block[i] = c.amplitude
	}
	return block
}

func (c *constantSource) FrequencyDomain() []float64 {
	return append([]float64(nil), c.spectrum...)
}

func accumulate(t *testing.T, src *constantSource, frames int) *Report {
	t.Helper()

	var acc Accumulator
	for range frames {
		require.NoError(t, acc.Add(src.TimeDomain(), src.FrequencyDomain()))
	}
	report, err := acc.Report(src.SampleRate(), DefaultParams())
	require.NoError(t, err)
	return report
}

func TestReportNoisyFlatMicrophone(t *testing.T) {
	report := accumulate(t, newConstantSource(0.01, -50), 5)

	assert.InDelta(t, 20*math.Log10(0.01+rmsEpsilon), report.NoiseFloorDB, 1e-9)
	assert.InDelta(t, -50, report.BandEnergies.Low, 1e-9)
	assert.InDelta(t, -50, report.BandEnergies.Mid, 1e-9)
	assert.InDelta(t, -50, report.BandEnergies.High, 1e-9)
	assert.InDelta(t, 0, report.Flatness, 1e-9)
	assert.True(t, report.IsFlatResponse)

	// -39.9 dB floor costs 30 points
	assert.Equal(t, 70, report.QualityScore)
	assert.Equal(t, EnvironmentNoisy, report.Environment)
	assert.Equal(t, 5, report.Frames)

	rec := report.Recommendations
	assert.InDelta(t, math.Pow(10, (report.NoiseFloorDB+6)/20), report.RecommendedNoiseGate, 1e-12)
	assert.Equal(t, report.RecommendedNoiseGate, rec.NoiseGateThreshold)
	assert.Equal(t, 1.2, rec.GainCompensation)
	assert.Equal(t, 0.8, rec.SmoothingFactor)
	assert.Equal(t, 0.75, rec.ConfidenceThreshold)
	assert.Contains(t, rec.Message, "Good")
}

func TestReportQuietRoom(t *testing.T) {
	report := accumulate(t, newConstantSource(1e-4, -50), 3)

	assert.Less(t, report.NoiseFloorDB, -60.0)
	assert.Equal(t, EnvironmentQuiet, report.Environment)
	assert.Equal(t, 100, report.QualityScore)
	assert.Equal(t, 0.6, report.Recommendations.ConfidenceThreshold)
	assert.Equal(t, 1.0, report.Recommendations.GainCompensation)
	assert.Contains(t, report.Recommendations.Message, "Excellent")
}

func TestReportUnevenResponse(t *testing.T) {
	src := newConstantSource(1e-4, -20)
	// 23.4375 Hz bins: 80-250 Hz is bins 3..9
	for i := 0; i < 11; i++ {
		src.spectrum[i] = -80
	}

	report := accumulate(t, src, 2)

	assert.InDelta(t, -80, report.BandEnergies.Low, 1e-9)
	assert.False(t, report.IsFlatResponse)
	assert.Greater(t, report.Flatness, 10.0)
	assert.Equal(t, 100-20-15, report.QualityScore)
}

func TestBandBeyondNyquistIsEmpty(t *testing.T) {
	spectrum := make([]float64, 128)
	// 4 kHz sample rate: the 2-8 kHz band starts at bin 128
	assert.Equal(t, EmptyBandDB, bandMeanDB(spectrum, 4000, Band{MinHz: 2000, MaxHz: 8000}))
	assert.Equal(t, 0.0, bandMeanDB(spectrum, 4000, Band{MinHz: 80, MaxHz: 250}))
}

func TestNonFiniteSpectrumValuesUseFloor(t *testing.T) {
	src := newConstantSource(0.001, math.Inf(-1))

	report := accumulate(t, src, 1)
	assert.Equal(t, EmptyBandDB, report.BandEnergies.Mid)
}

func TestQualityScoreMonotonicInNoiseFloor(t *testing.T) {
	for _, isFlat := range []bool{true, false} {
		for _, low := range []float64{-30, -70} {
			bands := BandEnergies{Low: low, Mid: -30, High: -30}
			prev := QualityScore(-120, bands, isFlat)
			for nf := -119.5; nf <= 0; nf += 0.5 {
				score := QualityScore(nf, bands, isFlat)
				assert.LessOrEqual(t, score, prev, "noise floor %.1f", nf)
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
				prev = score
			}
		}
	}
}

func TestClassifyEnvironment(t *testing.T) {
	tests := []struct {
		floor float64
		want  Environment
	}{
		{-80, EnvironmentQuiet},
		{-60, EnvironmentNormal},
		{-50, EnvironmentNormal},
		{-45, EnvironmentNoisy},
		{-10, EnvironmentNoisy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyEnvironment(tt.floor), "floor %.0f", tt.floor)
	}
}

func TestRecommendSmoothing(t *testing.T) {
	assert.Equal(t, 0.9, Recommend(-25, 50).SmoothingFactor)
	assert.Equal(t, 0.8, Recommend(-35, 50).SmoothingFactor)
}

func TestMessageBands(t *testing.T) {
	assert.Contains(t, Message(85, -70), "Excellent")
	assert.Contains(t, Message(65, -55), "Good")
	assert.Contains(t, Message(45, -35), "background noise")
	assert.Contains(t, Message(45, -55), "fair")
	assert.Contains(t, Message(10, -20), "Poor")
}

func TestAccumulatorErrors(t *testing.T) {
	var acc Accumulator

	_, err := acc.Report(testSampleRate, DefaultParams())
	assert.ErrorIs(t, err, ErrNoSamples)

	assert.ErrorIs(t, acc.Add(nil, make([]float64, 8)), ErrEmptyFrame)

	require.NoError(t, acc.Add([]float64{0.1}, make([]float64, 8)))
	assert.ErrorIs(t, acc.Add([]float64{0.1}, make([]float64, 4)), ErrSpectrumSize)
}

func newTestSession(src Source) *Session {
	s := NewSession(src, DefaultParams())
	s.SetLogger(&logging.NoOpLogger{})
	return s
}

func TestSessionCompletesAfterDuration(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Tick(t0)
	assert.ErrorIs(t, err, ErrNotStarted)

	s.Start(t0)
	for _, offset := range []time.Duration{0, time.Second, 2999 * time.Millisecond} {
		done, err := s.Tick(t0.Add(offset))
		require.NoError(t, err)
		assert.False(t, done)
	}

	_, err = s.Report()
	assert.Error(t, err)

	done, err := s.Tick(t0.Add(DefaultDuration))
	require.NoError(t, err)
	assert.True(t, done)

	report, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Frames)

	// Further ticks do not collect
	done, err = s.Tick(t0.Add(4 * time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 3, report.Frames)
}

func TestSessionWithoutSamples(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))
	t0 := time.Now()
	s.Start(t0)

	_, err := s.Tick(t0.Add(DefaultDuration))
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestSessionCancel(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))
	t0 := time.Now()
	s.Start(t0)

	_, err := s.Tick(t0)
	require.NoError(t, err)

	s.Cancel()
	s.Cancel()
	assert.True(t, s.Cancelled())

	_, err = s.Tick(t0.Add(10 * time.Millisecond))
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = s.Report()
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRunCompletes(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))
	t0 := time.Now()

	ticks := make(chan time.Time, 8)
	for i := range 5 {
		ticks <- t0.Add(time.Duration(i) * time.Second)
	}

	report, err := Run(context.Background(), s, ticks)
	require.NoError(t, err)
	// Ticks at 0, 1 and 2 s collect; the 3 s tick completes the run
	assert.Equal(t, 3, report.Frames)
}

func TestRunFinishesWhenTicksClose(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))
	t0 := time.Now()

	ticks := make(chan time.Time, 2)
	ticks <- t0
	ticks <- t0.Add(100 * time.Millisecond)
	close(ticks)

	report, err := Run(context.Background(), s, ticks)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Frames)
}

func TestRunTicksCloseBeforeFirstTick(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))

	ticks := make(chan time.Time)
	close(ticks)

	report, err := Run(context.Background(), s, ticks)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrNoSamples)
	assert.False(t, s.Cancelled())
}

func TestRunContextCancel(t *testing.T) {
	s := newTestSession(newConstantSource(0.001, -40))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, s, make(chan time.Time))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, s.Cancelled())
}
