package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/sonido-voz/algorithms/speech"
	"github.com/RyanBlaney/sonido-voz/algorithms/tonal"
	"github.com/RyanBlaney/sonido-voz/analysis"
	"github.com/RyanBlaney/sonido-voz/calibration"
)

func TestRenderFrameTable(t *testing.T) {
	hnr := 12.5
	rows := []FrameRow{
		{
			Time: 0,
			Metrics: analysis.Metrics{
				Pitch:    tonal.PitchEstimate{Frequency: 220, Confidence: 0.97, Voiced: true},
				Formants: []speech.Formant{{Frequency: 710}, {Frequency: 1180}},
				Vowel:    speech.VowelA,
				VoiceQuality: analysis.VoiceQualityReport{
					CPP:   11.2,
					HNRDB: &hnr,
				},
				LevelDB: -9,
			},
		},
		{Time: 0.02, Metrics: analysis.Metrics{LevelDB: -200}},
	}

	var buf bytes.Buffer
	RenderFrameTable(&buf, rows)
	out := buf.String()

	assert.Contains(t, out, "Pitch")
	assert.Contains(t, out, "220.0 Hz")
	assert.Contains(t, out, "710")
	assert.Contains(t, out, "1180")
	assert.Contains(t, out, "12.5 dB")
	assert.Contains(t, out, "0.02s")
}

func TestRenderSummary(t *testing.T) {
	rows := []FrameRow{
		{Metrics: analysis.Metrics{Pitch: tonal.PitchEstimate{Frequency: 200, Voiced: true}}},
		{Metrics: analysis.Metrics{Pitch: tonal.PitchEstimate{Frequency: 220, Voiced: true}}},
		{Metrics: analysis.Metrics{}},
	}

	var buf bytes.Buffer
	RenderSummary(&buf, rows)

	assert.Contains(t, buf.String(), "210.0 Hz")
	assert.Contains(t, buf.String(), "Voiced frames")
}

func TestRenderCalibration(t *testing.T) {
	report := &calibration.Report{
		NoiseFloorDB:         -65,
		QualityScore:         100,
		Environment:          calibration.EnvironmentQuiet,
		IsFlatResponse:       true,
		RecommendedNoiseGate: 0.001,
		Recommendations:      calibration.Recommend(-65, 100),
		Frames:               180,
	}

	var buf bytes.Buffer
	RenderCalibration(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "100/100")
	assert.Contains(t, out, "quiet")
	assert.Contains(t, out, "-65.0 dB")
	assert.Contains(t, out, "Excellent")
}
