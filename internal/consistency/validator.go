// Package consistency scores a simulated student attempt against five
// hand-written rubrics. Scoring never fails on missing or odd content;
// it degrades to low scores instead.
package consistency

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/mathsim/internal/answer"
	"github.com/abhisek/mathsim/internal/jsonlike"
)

// Validate scores attempt for the given problem and disability. expected
// is the correct answer as written in the problem.
func Validate(problem, disability string, attempt map[string]any, expected string) Report {
	studentAnswer := ExtractFinalAnswer(attempt)

	checks := Checks{
		StepAnswerConsistency: checkStepAnswer(attempt, studentAnswer),
		DisabilityBehavior:    checkBehavior(disability, attempt),
		MathematicalReasoning: checkReasoning(attempt, expected),
		ErrorPatterns:         checkErrorPatterns(disability, attempt),
		Completeness:          checkCompleteness(attempt),
	}

	var sum float64
	scores := checks.Scores()
	for _, s := range scores {
		sum += s
	}

	return Report{
		OverallConsistencyScore: sum / float64(len(scores)),
		Checks:                  checks,
		Recommendations:         recommendations(checks),
		Flags:                   flags(checks),
	}
}

// ValidateInput is Validate for caller-supplied input, where attempt may
// be a mapping or a JSON object string.
func ValidateInput(problem, disability string, attempt any, expected string) (Report, error) {
	m, err := jsonlike.EnsureDict(attempt)
	if err != nil {
		if mErr, ok := err.(*jsonlike.MalformedInputError); ok {
			mErr.Field = "student_attempt"
		}
		return Report{}, err
	}
	return Validate(problem, disability, m, expected), nil
}

// ExtractFinalAnswer finds the student's answer: the final_answer field
// if present, else the last number of the last step, else the last
// number of the thought process. Numeric answers are returned in
// canonical form.
func ExtractFinalAnswer(attempt map[string]any) string {
	if len(attempt) == 0 {
		return ""
	}

	if v, ok := attempt["final_answer"]; ok && v != nil {
		raw := strings.TrimSpace(jsonlike.Text(v))
		if n, ok := answer.ParseNumericLike(raw); ok {
			return answer.Format(n)
		}
		return raw
	}

	if steps := stepsOf(attempt); len(steps) > 0 {
		if n, ok := answer.ParseNumericLike(steps[len(steps)-1]); ok {
			return answer.Format(n)
		}
	}

	if thought := jsonlike.String(attempt, "thoughtprocess"); thought != "" {
		if n, ok := answer.ParseNumericLike(thought); ok {
			return answer.Format(n)
		}
	}
	return ""
}

func checkStepAnswer(attempt map[string]any, studentAnswer string) StepAnswerCheck {
	steps := stepsOf(attempt)
	if len(steps) == 0 || studentAnswer == "" {
		return StepAnswerCheck{Result: Result{Score: 0, Status: "incomplete", Details: "Missing steps or final answer"}}
	}

	var stepAnswers []string
	for _, step := range steps {
		stepAnswers = append(stepAnswers, answer.Numbers(step)...)
	}

	found := false
	if val, ok := answer.ParseNumericLike(studentAnswer); ok {
		for _, sa := range stepAnswers {
			n, ok := answer.ParseNumericLike(sa)
			if ok && math.Abs(val-n) < 0.01 {
				found = true
				break
			}
		}
	}

	res := StepAnswerCheck{
		Result:      Result{Score: 0.3, Status: "inconsistent"},
		StepAnswers: stepAnswers,
	}
	verdict := "not found"
	if found {
		res.Score = 1
		res.Status = "consistent"
		verdict = "found"
	}
	res.Details = fmt.Sprintf("Final answer '%s' %s in step-by-step work", studentAnswer, verdict)
	return res
}

func checkBehavior(disability string, attempt map[string]any) BehaviorCheck {
	set, ok := behaviorCatalog[disability]
	if !ok {
		set = behaviorCatalog[NoDisability]
	}
	text := attemptText(attempt)

	expectedFound := matches(set.expected, text)
	unexpectedFound := matches(set.unexpected, text)

	totalExpected := float64(len(set.expected))
	totalUnexpected := float64(len(set.unexpected))

	expectedScore := math.Min(1, float64(len(expectedFound))/math.Max(1, totalExpected*0.3))
	unexpectedPenalty := math.Min(0.5, float64(len(unexpectedFound))/math.Max(1, totalUnexpected*0.5))
	base := 0.1
	if len(expectedFound) > 0 {
		base = 0.3
	}
	score := clamp01(base + expectedScore - unexpectedPenalty)

	status := "unrealistic"
	if score > 0.5 {
		status = "realistic"
	}
	return BehaviorCheck{
		Result: Result{
			Score:  score,
			Status: status,
			Details: fmt.Sprintf("Found %d/%d expected behaviors, %d/%d unexpected behaviors",
				len(expectedFound), len(set.expected), len(unexpectedFound), len(set.unexpected)),
		},
		ExpectedFound:   expectedFound,
		UnexpectedFound: unexpectedFound,
	}
}

func checkReasoning(attempt map[string]any, expected string) ReasoningCheck {
	steps := stepsOf(attempt)
	studentAnswer := ExtractFinalAnswer(attempt)
	if len(steps) == 0 || studentAnswer == "" {
		return ReasoningCheck{Result: Result{Score: 0, Status: "incomplete", Details: "Missing mathematical work"}}
	}

	hasOperations := false
	for _, step := range steps {
		lower := strings.ToLower(step)
		for _, op := range operationMarkers {
			if strings.Contains(lower, op) {
				hasOperations = true
				break
			}
		}
		if hasOperations {
			break
		}
	}

	hasProgression := len(steps) >= 2

	reasonable := false
	studentNum, sok := answer.ParseNumericLike(studentAnswer)
	expectedNum, eok := answer.ParseNumericLike(expected)
	if sok && eok {
		if expectedNum == 0 {
			reasonable = true
		} else {
			reasonable = math.Abs(studentNum-expectedNum)/math.Abs(expectedNum) < 0.5
		}
	}

	score := float64(boolCount(hasOperations, hasProgression, reasonable)) / 3
	status := "needs_improvement"
	if score > 0.7 {
		status = "good"
	}
	return ReasoningCheck{
		Result: Result{
			Score:   score,
			Status:  status,
			Details: fmt.Sprintf("Operations: %t, Progression: %t, Reasonable: %t", hasOperations, hasProgression, reasonable),
		},
		HasOperations:    &hasOperations,
		HasProgression:   &hasProgression,
		ReasonableAnswer: &reasonable,
	}
}

func checkErrorPatterns(disability string, attempt map[string]any) ErrorPatternCheck {
	expectedErrors := errorCatalog[disability]
	if expectedErrors == nil {
		expectedErrors = []string{}
	}
	text := attemptText(attempt)
	found := matches(expectedErrors, text)

	res := ErrorPatternCheck{ExpectedPatterns: expectedErrors, FoundPatterns: found}

	if disability == NoDisability {
		errorCount := len(matches(genericErrorIndicators, text))
		res.Score = math.Max(0, 1-float64(errorCount)*0.2)
		res.Status = "too_many_errors"
		if res.Score > 0.7 {
			res.Status = "appropriate"
		}
		res.Details = "Found minimal error patterns"
		return res
	}

	if len(expectedErrors) == 0 {
		res.Score = 0.5
	} else {
		res.Score = math.Min(1, float64(len(found))/float64(len(expectedErrors)))
	}
	res.Status = "unrealistic"
	if res.Score > 0.3 {
		res.Status = "realistic"
	}
	res.Details = fmt.Sprintf("Found %d error patterns", len(found))
	return res
}

func checkCompleteness(attempt map[string]any) CompletenessCheck {
	var present, missing []string
	for _, f := range requiredFields {
		if jsonlike.Truthy(attempt[f]) {
			present = append(present, f)
		} else {
			missing = append(missing, f)
		}
	}
	completeness := float64(len(present)) / float64(len(requiredFields))

	steps := stepsOf(attempt)
	meaningfulSteps := 0
	for _, step := range steps {
		if len([]rune(strings.TrimSpace(step))) > 10 {
			meaningfulSteps++
		}
	}
	meaningfulThought := len([]rune(strings.TrimSpace(jsonlike.String(attempt, "thoughtprocess")))) > 20

	structure := (float64(meaningfulSteps)/math.Max(1, float64(len(steps))) + float64(boolCount(meaningfulThought))) / 2
	score := (completeness + structure) / 2

	status := "incomplete"
	if score > 0.7 {
		status = "complete"
	}
	if present == nil {
		present = []string{}
	}
	if missing == nil {
		missing = []string{}
	}
	return CompletenessCheck{
		Result: Result{
			Score:   score,
			Status:  status,
			Details: fmt.Sprintf("Fields present: %d/%d, Meaningful content: %.2f", len(present), len(requiredFields), structure),
		},
		PresentFields: present,
		MissingFields: missing,
	}
}

func recommendations(c Checks) []string {
	recs := []string{}
	add := func(score float64, rec string) {
		if score < 0.5 {
			recs = append(recs, rec)
		}
	}
	add(c.StepAnswerConsistency.Score, recStepAnswer)
	add(c.DisabilityBehavior.Score, recBehavior)
	add(c.MathematicalReasoning.Score, recReasoning)
	add(c.ErrorPatterns.Score, recErrorPattern)
	add(c.Completeness.Score, recCompleteness)
	return recs
}

func flags(c Checks) []string {
	out := []string{}
	if c.StepAnswerConsistency.Score < 0.3 {
		out = append(out, flagStepAnswer)
	}
	if c.DisabilityBehavior.Score < 0.2 {
		out = append(out, flagBehavior)
	}
	if c.Completeness.Score < 0.3 {
		out = append(out, flagCompleteness)
	}
	return out
}

// stepsOf returns steps_to_solve as text. A single string counts as one
// step.
func stepsOf(attempt map[string]any) []string {
	switch v := attempt["steps_to_solve"].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = append(out, jsonlike.Text(s))
		}
		return out
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return []string{jsonlike.Text(v)}
	}
}

// attemptText joins the free text of an attempt, lowercased.
func attemptText(attempt map[string]any) string {
	return strings.ToLower(strings.Join([]string{
		jsonlike.String(attempt, "thoughtprocess"),
		strings.Join(stepsOf(attempt), " "),
		jsonlike.String(attempt, "disability_impact"),
	}, " "))
}

func matches(phrases []string, text string) []string {
	found := []string{}
	for _, p := range phrases {
		if strings.Contains(text, p) {
			found = append(found, p)
		}
	}
	return found
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
