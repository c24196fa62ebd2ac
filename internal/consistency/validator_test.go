package consistency

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func dyslexiaAttempt() map[string]any {
	return map[string]any{
		"thoughtprocess": "I kept re-reading the problem because the numbers looked reversed, 21 instead of 12.",
		"steps_to_solve": []any{
			"Read the problem: 3 boxes with 4 pencils each.",
			"I saw 4 but transposed it and wrote 7 at first.",
			"Multiply 3 x 4 = 12",
			"Write the answer as 21 because I mixed up the digits.",
		},
		"disability_impact": "Number reversal made me confuse 12 and 21.",
		"final_answer":      "21",
	}
}

func TestExtractFinalAnswer(t *testing.T) {
	tests := []struct {
		name    string
		attempt map[string]any
		want    string
	}{
		{"empty", map[string]any{}, ""},
		{"explicit numeric", map[string]any{"final_answer": " 12.0 "}, "12"},
		{"explicit number value", map[string]any{"final_answer": 7.5}, "7.5"},
		{"explicit fraction", map[string]any{"final_answer": "3/4"}, "0.75"},
		{"explicit text", map[string]any{"final_answer": "seven"}, "seven"},
		{"null treated as absent", map[string]any{"final_answer": nil, "steps_to_solve": []any{"3 + 4 = 7"}}, "7"},
		{"from last step", map[string]any{"steps_to_solve": []any{"2 + 2 = 4", "4 x 3 = 12"}}, "12"},
		{"from thought process", map[string]any{"thoughtprocess": "I think it is 15"}, "15"},
		{"nothing numeric", map[string]any{"thoughtprocess": "no idea"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFinalAnswer(tt.attempt); got != tt.want {
				t.Errorf("ExtractFinalAnswer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStepAnswerConsistency(t *testing.T) {
	attempt := map[string]any{
		"final_answer":   "12",
		"steps_to_solve": []any{"3 groups of 4", "3 x 4 = 12"},
	}
	got := checkStepAnswer(attempt, ExtractFinalAnswer(attempt))
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, "consistent", got.Status)
	assert.Equal(t, []string{"3", "4", "3", "4", "12"}, got.StepAnswers)

	attempt["final_answer"] = "13"
	got = checkStepAnswer(attempt, ExtractFinalAnswer(attempt))
	assert.Equal(t, 0.3, got.Score)
	assert.Equal(t, "inconsistent", got.Status)

	noAnswer := map[string]any{"steps_to_solve": []any{"thinking about groups"}}
	got = checkStepAnswer(noAnswer, ExtractFinalAnswer(noAnswer))
	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, "incomplete", got.Status)
}

func TestDisabilityBehavior(t *testing.T) {
	got := checkBehavior("Dyslexia", dyslexiaAttempt())
	// "mixed up" and "confuse" are not catalog phrases.
	assert.ElementsMatch(t, []string{"re-reading", "number reversal", "reversed", "transposed"}, got.ExpectedFound)
	assert.Empty(t, got.UnexpectedFound)
	// base 0.3 + min(1, 4/3) = 1.3, clamped to 1
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, "realistic", got.Status)
}

func TestDisabilityBehaviorPenaltyClampsAtZero(t *testing.T) {
	attempt := map[string]any{
		"thoughtprocess": "Clear understanding, no confusion, perfect reading and easily understood.",
	}
	got := checkBehavior("Dyslexia", attempt)
	// "confusion" is an expected phrase and is found inside "no confusion".
	assert.Equal(t, []string{"confusion"}, got.ExpectedFound)
	assert.Len(t, got.UnexpectedFound, 4)
	// 0.3 + 1/3 - 0.5
	assert.InDelta(t, 0.3+1.0/3-0.5, got.Score, 1e-9)

	none := checkBehavior("Dysgraphia", map[string]any{"thoughtprocess": "Neat and clear writing, perfect handwriting"})
	// "handwriting" and "writing" are expected; all three unexpected phrases match.
	assert.ElementsMatch(t, []string{"handwriting", "writing"}, none.ExpectedFound)
	assert.InDelta(t, 0.8, none.Score, 1e-9)

	floor := checkBehavior(NoDisability, map[string]any{
		"thoughtprocess": "excessive confusion, major errors, disability-like patterns, very confused, completely wrong",
	})
	assert.Equal(t, 0.0, floor.Score)
	assert.Equal(t, "unrealistic", floor.Status)
}

func TestUnknownDisabilityUsesNoDisabilityBehaviors(t *testing.T) {
	got := checkBehavior("Something else", map[string]any{"thoughtprocess": "methodical and systematic"})
	assert.ElementsMatch(t, []string{"methodical", "systematic"}, got.ExpectedFound)
}

func TestMathematicalReasoning(t *testing.T) {
	attempt := map[string]any{
		"final_answer":   "14",
		"steps_to_solve": []any{"3 x 4", "3 x 4 = 14"},
	}
	got := checkReasoning(attempt, "12")
	require.NotNil(t, got.ReasonableAnswer)
	assert.True(t, *got.HasOperations)
	assert.True(t, *got.HasProgression)
	assert.True(t, *got.ReasonableAnswer)
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, "good", got.Status)

	far := checkReasoning(attempt, "100")
	assert.False(t, *far.ReasonableAnswer)
	assert.InDelta(t, 2.0/3, far.Score, 1e-9)
	assert.Equal(t, "needs_improvement", far.Status)

	nonNumeric := checkReasoning(attempt, "fourteen")
	assert.False(t, *nonNumeric.ReasonableAnswer)

	zero := checkReasoning(attempt, "0")
	assert.True(t, *zero.ReasonableAnswer)

	negative := checkReasoning(map[string]any{"final_answer": "-9", "steps_to_solve": []any{"5 - 15 = -9"}}, "-10")
	assert.True(t, *negative.ReasonableAnswer, "closeness uses the magnitude of the expected answer")

	missing := checkReasoning(map[string]any{}, "12")
	assert.Equal(t, 0.0, missing.Score)
	assert.Nil(t, missing.HasOperations)
}

func TestErrorPatterns(t *testing.T) {
	got := checkErrorPatterns("Dyslexia", dyslexiaAttempt())
	assert.ElementsMatch(t, []string{"reversed", "transposed"}, got.FoundPatterns)
	assert.InDelta(t, 0.4, got.Score, 1e-9)
	assert.Equal(t, "realistic", got.Status)

	uncataloged := checkErrorPatterns("Dysgraphia", dyslexiaAttempt())
	assert.Equal(t, 0.5, uncataloged.Score)
	assert.Equal(t, "realistic", uncataloged.Status)

	clean := checkErrorPatterns(NoDisability, map[string]any{"thoughtprocess": "I added carefully."})
	assert.Equal(t, 1.0, clean.Score)
	assert.Equal(t, "appropriate", clean.Status)

	messy := checkErrorPatterns(NoDisability, map[string]any{"thoughtprocess": "confusion and a mistake, wrong error"})
	assert.InDelta(t, 0.2, messy.Score, 1e-9)
	assert.Equal(t, "too_many_errors", messy.Status)
}

func TestCompleteness(t *testing.T) {
	got := checkCompleteness(dyslexiaAttempt())
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, "complete", got.Status)
	assert.Empty(t, got.MissingFields)

	partial := checkCompleteness(map[string]any{
		"thoughtprocess": "short",
		"steps_to_solve": []any{"3 x 4 = 12 done", "12"},
	})
	// fields 2/3, structure (1/2 + 0) / 2 = 0.25
	assert.InDelta(t, (2.0/3+0.25)/2, partial.Score, 1e-9)
	assert.Equal(t, []string{"disability_impact"}, partial.MissingFields)

	empty := checkCompleteness(map[string]any{})
	assert.Equal(t, 0.0, empty.Score)
}

func TestValidateAggregates(t *testing.T) {
	report := Validate("3 boxes of 4 pencils", "Dyslexia", dyslexiaAttempt(), "12")

	scores := report.Checks.Scores()
	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.True(t, near(report.OverallConsistencyScore, sum/5))
	assert.Empty(t, report.Flags)

	// The last step restates 21.
	assert.Equal(t, 1.0, report.Checks.StepAnswerConsistency.Score)
}

func TestValidateEmptyAttempt(t *testing.T) {
	report := Validate("p", "Dyslexia", map[string]any{}, "12")

	assert.Equal(t, []string{
		recStepAnswer,
		recBehavior,
		recReasoning,
		recErrorPattern,
		recCompleteness,
	}, report.Recommendations)
	assert.Equal(t, []string{flagStepAnswer, flagBehavior, flagCompleteness}, report.Flags)
}

func TestValidateInputParsesJSONString(t *testing.T) {
	raw, err := json.Marshal(dyslexiaAttempt())
	require.NoError(t, err)

	report, err := ValidateInput("p", "Dyslexia", string(raw), "12")
	require.NoError(t, err)
	assert.Greater(t, report.OverallConsistencyScore, 0.5)

	_, err = ValidateInput("p", "Dyslexia", "{broken", "12")
	var mErr *jsonlike.MalformedInputError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "student_attempt", mErr.Field)
}

func TestReportJSONShape(t *testing.T) {
	report := Validate("p", "Dyslexia", dyslexiaAttempt(), "12")
	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	checks := decoded["checks"].(map[string]any)
	for _, name := range []string{"step_answer_consistency", "disability_behavior", "mathematical_reasoning", "error_patterns", "completeness"} {
		c, ok := checks[name].(map[string]any)
		require.True(t, ok, "missing check %s", name)
		assert.Contains(t, c, "score")
		assert.Contains(t, c, "status")
		assert.Contains(t, c, "details")
	}
}
