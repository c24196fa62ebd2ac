package report

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathsim/internal/adaptive"
	"github.com/abhisek/mathsim/internal/consistency"
	"github.com/abhisek/mathsim/internal/improvement"
)

func TestScoreBarWidth(t *testing.T) {
	for _, score := range []float64{-0.5, 0, 0.33, 1, 1.7} {
		bar := ScoreBar("Overall", score, 60)
		if w := lipgloss.Width(bar); w != 60 {
			t.Errorf("score %v: width = %d, want 60", score, w)
		}
	}
	if !strings.Contains(ScoreBar("x", 0.5, 60), "50%") {
		t.Error("expected the percentage to be printed")
	}
}

func TestConsistencyIncludesEveryCheck(t *testing.T) {
	r := consistency.Validate("What is 12 x 5?", "Dyscalculia", map[string]any{
		"thoughtprocess": "I mixed up the symbols and added",
		"steps_to_solve": []any{"12 + 5 = 17"},
		"final_answer":   "17",
	}, "60")

	out := Consistency(r)
	for _, want := range []string{"Consistency report", "Overall", "Step/answer", "Disability behavior", "Math reasoning", "Error patterns", "Completeness"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRecommendation(t *testing.T) {
	out := Recommendation(adaptive.Recommend(nil, "hard"), "hard")
	for _, want := range []string{"Difficulty recommendation", "hard", "medium", "Confidence", "Next steps"} {
		if !strings.Contains(out, want) {
			t.Errorf("recommendation missing %q", want)
		}
	}
}

func TestImprovement(t *testing.T) {
	out := Improvement(&improvement.Report{
		Summary:          "Carries inconsistently.",
		PracticeProblems: []string{"1. 48 + 37"},
	})
	if !strings.Contains(out, "Carries inconsistently.") || !strings.Contains(out, "1. 48 + 37") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
