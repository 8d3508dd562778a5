package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/analysis"
	"github.com/RyanBlaney/sonido-voz/calibration"
)

// FrameRow is one analysed frame and its start time in seconds
type FrameRow struct {
	Time    float64
	Metrics analysis.Metrics
}

var frameHeaders = []string{"Time", "Pitch", "Conf", "F1", "F2", "Vowel", "CPP", "HNR", "Jitter", "Shimmer", "Sib", "Level"}

// RenderFrameTable writes a table with one row per frame
func RenderFrameTable(w io.Writer, rows []FrameRow) {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = frameCells(r)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(KeyStyle).
		Headers(frameHeaders...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			if !rows[row].Metrics.Pitch.Voiced {
				return MutedCellStyle
			}
			return CellStyle
		})

	fmt.Fprintln(w, t.Render())
}

func frameCells(r FrameRow) []string {
	m := r.Metrics
	vq := m.VoiceQuality

	pitch, conf := "-", "-"
	if m.Pitch.Voiced {
		pitch = fmt.Sprintf("%.1f Hz", m.Pitch.Frequency)
		conf = fmt.Sprintf("%.2f", m.Pitch.Confidence)
	}

	f1, f2 := "-", "-"
	if len(m.Formants) > 0 {
		f1 = fmt.Sprintf("%.0f", m.Formants[0].Frequency)
	}
	if len(m.Formants) > 1 {
		f2 = fmt.Sprintf("%.0f", m.Formants[1].Frequency)
	}

	vowel := string(m.Vowel)
	if vowel == "" {
		vowel = "-"
	}

	sib := "no"
	if vq.Sibilance.IsSibilant {
		sib = "yes"
	}

	return []string{
		fmt.Sprintf("%.2fs", r.Time),
		pitch,
		conf,
		f1,
		f2,
		vowel,
		fmt.Sprintf("%.1f", vq.CPP),
		optional(vq.HNRDB, "%.1f dB"),
		optional(vq.JitterPct, "%.2f%%"),
		optional(vq.ShimmerPct, "%.2f%%"),
		sib,
		fmt.Sprintf("%.1f dB", m.LevelDB),
	}
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// RenderSummary writes voiced-frame statistics for a whole file
func RenderSummary(w io.Writer, rows []FrameRow) {
	var pitches, cpps []float64
	for _, r := range rows {
		if r.Metrics.Pitch.Voiced {
			pitches = append(pitches, r.Metrics.Pitch.Frequency)
			cpps = append(cpps, r.Metrics.VoiceQuality.CPP)
		}
	}

	fmt.Fprintln(w, TitleStyle.Render("Summary"))
	printKV(w, "Frames", strconv.Itoa(len(rows)))
	printKV(w, "Voiced frames", strconv.Itoa(len(pitches)))
	if len(pitches) == 0 {
		return
	}
	printKV(w, "Mean pitch", fmt.Sprintf("%.1f Hz", common.Mean(pitches)))
	printKV(w, "Pitch std-dev", fmt.Sprintf("%.1f Hz", common.PopStandardDeviation(pitches)))
	printKV(w, "Mean CPP (voiced)", fmt.Sprintf("%.1f", common.Mean(cpps)))
}

// RenderCalibration writes a calibration report
func RenderCalibration(w io.Writer, report *calibration.Report) {
	fmt.Fprintln(w, TitleStyle.Render("Microphone calibration"))

	fmt.Fprintf(w, "%s %s\n",
		KeyStyle.Width(24).Render("Quality score:"),
		ScoreStyle(report.QualityScore).Render(fmt.Sprintf("%d/100", report.QualityScore)))
	printKV(w, "Noise floor", fmt.Sprintf("%.1f dB", report.NoiseFloorDB))
	printKV(w, "Environment", string(report.Environment))
	printKV(w, "Low band (80-250 Hz)", fmt.Sprintf("%.1f dB", report.BandEnergies.Low))
	printKV(w, "Mid band (250-2000 Hz)", fmt.Sprintf("%.1f dB", report.BandEnergies.Mid))
	printKV(w, "High band (2-8 kHz)", fmt.Sprintf("%.1f dB", report.BandEnergies.High))
	printKV(w, "Flat response", fmt.Sprintf("%t (%.1f dB spread)", report.IsFlatResponse, report.Flatness))
	printKV(w, "Frames collected", strconv.Itoa(report.Frames))

	rec := report.Recommendations
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Recommended settings"))
	printKV(w, "Noise gate", fmt.Sprintf("%.5f", report.RecommendedNoiseGate))
	printKV(w, "Gain compensation", fmt.Sprintf("%.1f", rec.GainCompensation))
	printKV(w, "Smoothing factor", fmt.Sprintf("%.1f", rec.SmoothingFactor))
	printKV(w, "Confidence threshold", fmt.Sprintf("%.2f", rec.ConfidenceThreshold))
	fmt.Fprintln(w)
	fmt.Fprintln(w, rec.Message)
}
