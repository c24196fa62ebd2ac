// Package report renders validation reports, difficulty recommendations
// and improvement reports for the terminal.
package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathsim/internal/adaptive"
	"github.com/abhisek/mathsim/internal/consistency"
	"github.com/abhisek/mathsim/internal/improvement"
	"github.com/abhisek/mathsim/internal/ui/theme"
)

// Width is the rendered width of a report card.
const Width = 72

// ScoreBar renders a labelled horizontal bar for a score in [0,1].
func ScoreBar(label string, score float64, width int) string {
	score = max(0, min(score, 1))

	var b strings.Builder
	b.WriteString(theme.Label.Render(fmt.Sprintf("%-24s", label)))

	barWidth := width - lipgloss.Width(b.String()) - 5
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * score)

	b.WriteString(theme.ScoreColor(score).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(theme.Body.Render(fmt.Sprintf(" %3d%%", int(score*100+0.5))))
	return b.String()
}

// Consistency renders a rubric validation report.
func Consistency(r consistency.Report) string {
	c := r.Checks
	rows := []struct {
		name string
		res  consistency.Result
	}{
		{"Step/answer", c.StepAnswerConsistency.Result},
		{"Disability behavior", c.DisabilityBehavior.Result},
		{"Math reasoning", c.MathematicalReasoning.Result},
		{"Error patterns", c.ErrorPatterns.Result},
		{"Completeness", c.Completeness.Result},
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Consistency report"))
	b.WriteString("\n\n")
	b.WriteString(ScoreBar("Overall", r.OverallConsistencyScore, Width-4))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(ScoreBar(row.name, row.res.Score, Width-4))
		b.WriteString(" ")
		b.WriteString(theme.Status(row.res.Status).Render(row.res.Status))
		b.WriteString("\n")
		if row.res.Details != "" {
			b.WriteString(theme.Hint.Render("  " + row.res.Details))
			b.WriteString("\n")
		}
	}
	writeList(&b, "Recommendations", r.Recommendations, theme.Body)
	writeList(&b, "Flags", r.Flags, theme.Flag)
	return theme.Card.Width(Width).Render(strings.TrimRight(b.String(), "\n"))
}

// Recommendation renders a difficulty recommendation.
func Recommendation(r adaptive.Recommendation, current string) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Difficulty recommendation"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s %s %s\n",
		theme.Label.Render("Current:"), theme.Body.Render(current),
		theme.Label.Render("→ Recommended:"), theme.Heading.Render(r.RecommendedDifficulty))
	b.WriteString(theme.Hint.Render(r.Reasoning))
	b.WriteString("\n\n")
	b.WriteString(ScoreBar("Confidence", r.Confidence, Width-4))
	b.WriteString("\n")
	b.WriteString(ScoreBar("Consistency", r.CurrentPerformance.ConsistencyScore, Width-4))
	b.WriteString("\n")
	b.WriteString(ScoreBar("Accuracy", r.CurrentPerformance.AccuracyRate, Width-4))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", theme.Label.Render("Trend:"), theme.Body.Render(r.CurrentPerformance.Trend))
	writeList(&b, "Next steps", r.Recommendations, theme.Body)
	return theme.Card.Width(Width).Render(strings.TrimRight(b.String(), "\n"))
}

// Improvement renders the follow-up chain output.
func Improvement(r *improvement.Report) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Improvement analysis"))
	b.WriteString("\n")
	for _, sec := range []struct{ title, text string }{
		{"Summary", r.Summary},
		{"Follow-up problem", r.GeneratedProblem},
		{"Simulated attempt", r.StudentAttempt},
		{"Improvement", r.ImprovementAnalysis},
	} {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render(sec.title))
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(strings.TrimSpace(sec.text)))
		b.WriteString("\n")
	}
	writeList(&b, "Practice", r.PracticeProblems, theme.Body)
	return theme.Card.Width(Width).Render(strings.TrimRight(b.String(), "\n"))
}

func writeList(b *strings.Builder, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(theme.Heading.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(style.Render("• " + item))
		b.WriteString("\n")
	}
}
