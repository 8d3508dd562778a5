// Package cli holds terminal styling and report rendering for the
// sonido-voz command.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#2E86AB") // Teal
	goodColor    = lipgloss.Color("#3BB273")
	warnColor    = lipgloss.Color("#E1BC29")
	badColor     = lipgloss.Color("#D1495B")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(badColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	MutedCellStyle = CellStyle.
			Foreground(mutedColor)
)

// ScoreStyle colours a 0-100 score: green from 80, yellow from 40, red below
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return ValueStyle.Foreground(goodColor)
	case score >= 40:
		return ValueStyle.Foreground(warnColor)
	default:
		return ValueStyle.Foreground(badColor)
	}
}

// PrintVersion prints version information
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("sonido-voz"))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// printKV prints one aligned key/value line
func printKV(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Width(24).Render(key+":"), ValueStyle.Render(value))
}
