// Package theme holds the lipgloss palette and styles used by the CLI
// reports.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette.
var (
	Primary = lipgloss.Color("#8B5CF6") // purple
	Accent  = lipgloss.Color("#14B8A6") // teal
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#F43F5E")
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Flag = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Status colors a rubric check status.
func Status(status string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch status {
	case "consistent", "realistic", "good", "appropriate", "complete":
		return s.Foreground(Success)
	case "needs_improvement":
		return s.Foreground(Warning)
	}
	return s.Foreground(Error)
}

// ScoreColor picks the bar color for a score in [0,1].
func ScoreColor(score float64) lipgloss.Style {
	switch {
	case score >= 0.8:
		return lipgloss.NewStyle().Background(Success)
	case score >= 0.5:
		return lipgloss.NewStyle().Background(Warning)
	}
	return lipgloss.NewStyle().Background(Error)
}
