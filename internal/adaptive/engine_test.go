package adaptive

import (
	"errors"
	"math"
	"testing"

	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(scores []float64, correct ...bool) []any {
	out := make([]any, len(scores))
	for i, s := range scores {
		r := map[string]any{"consistency_score": s}
		if i < len(correct) {
			r["is_correct"] = correct[i]
		}
		out[i] = r
	}
	return out
}

func TestRecommendEmptyHistory(t *testing.T) {
	got := Recommend(nil, "hard")

	assert.Equal(t, "medium", got.RecommendedDifficulty)
	assert.Equal(t, 0.4, got.Confidence)
	assert.Equal(t, TrendInsufficient, got.CurrentPerformance.Trend)
	assert.Equal(t, "No prior sessions recorded. Begin at a balanced level.", got.Reasoning)
	assert.Len(t, got.Recommendations, 1)
}

func TestRecommendStepsUpForStrongWork(t *testing.T) {
	got := Recommend(history([]float64{0.9, 0.92, 0.88, 0.91, 0.95}, true, true, true, true, true), "medium")

	assert.Equal(t, "hard", got.RecommendedDifficulty)
	assert.Equal(t, "Recent work is consistently strong. Increasing challenge level.", got.Reasoning)
	assert.Equal(t, 1.0, got.CurrentPerformance.AccuracyRate)
	// 0.3 + 5*0.05 + 0.1
	assert.Equal(t, 0.65, got.Confidence)
	assert.Equal(t, []string{"Introduce slightly more complex problems with scaffolding."}, got.Recommendations)
}

func TestRecommendStepsDownWhenStruggling(t *testing.T) {
	got := Recommend(history([]float64{0.8, 0.3, 0.2}), "medium")

	assert.Equal(t, "easy", got.RecommendedDifficulty)
	assert.Equal(t, "Student is struggling with current level. Reducing difficulty for consolidation.", got.Reasoning)
	assert.Equal(t, TrendDeclining, got.CurrentPerformance.Trend)
	assert.InDelta(t, 0.4333, got.CurrentPerformance.ConsistencyScore, 1e-3)
	// No is_correct data: accuracy falls back to consistency.
	assert.Equal(t, got.CurrentPerformance.ConsistencyScore, got.CurrentPerformance.AccuracyRate)
	assert.Equal(t, []string{
		"Review recent problems step-by-step to build reliable routines.",
		"Focus on targeted practice with feedback on mistakes.",
		"Reduce cognitive load and revisit foundational concepts.",
	}, got.Recommendations)
}

func TestRecommendDecliningTrend(t *testing.T) {
	// avg 0.56, accuracy 0.56, declining
	got := Recommend(history([]float64{0.7, 0.7, 0.5, 0.45, 0.45}), "hard")
	assert.Equal(t, "medium", got.RecommendedDifficulty)
	assert.Equal(t, "Recent decline in performance detected. Lowering difficulty to rebuild confidence.", got.Reasoning)
}

func TestRecommendImprovingTrend(t *testing.T) {
	// avg 0.74, best 0.84: not excellent, but improving
	got := Recommend(history([]float64{0.6, 0.65, 0.8, 0.84, 0.81}), "easy")
	assert.Equal(t, TrendImproving, got.CurrentPerformance.Trend)
	assert.Equal(t, "medium", got.RecommendedDifficulty)
	assert.Equal(t, "Performance is steadily improving. Introducing the next difficulty step.", got.Reasoning)
}

func TestRecommendHolds(t *testing.T) {
	got := Recommend(history([]float64{0.65, 0.65, 0.65}), "medium")
	assert.Equal(t, "medium", got.RecommendedDifficulty)
	assert.Equal(t, holdReasoning, got.Reasoning)
	assert.Equal(t, TrendStable, got.CurrentPerformance.Trend)
	assert.Equal(t, []string{"Maintain the current mix of problem types and monitor progress."}, got.Recommendations)
}

func TestRecommendAtBounds(t *testing.T) {
	strong := history([]float64{0.9, 0.95, 0.9}, true, true, true)
	got := Recommend(strong, "hard")
	assert.Equal(t, "hard", got.RecommendedDifficulty)
	assert.Equal(t, holdReasoning, got.Reasoning)

	weak := history([]float64{0.1, 0.2, 0.1})
	got = Recommend(weak, "easy")
	assert.Equal(t, "easy", got.RecommendedDifficulty)
}

func TestStepUpTakesPriorityOverDecline(t *testing.T) {
	// Exactly on every step-up threshold, with a declining trend.
	h := history([]float64{0.875, 0.75, 0.75, 0.75, 0.625}, true, true, true, true, false)
	m := ComputeMetrics(toRecords(h))
	require.Equal(t, 0.75, m.AvgConsistency)
	require.Equal(t, 0.8, m.Accuracy)
	require.Equal(t, 0.875, m.BestConsistency)
	require.Equal(t, TrendDeclining, ComputeTrend(toRecords(h)).Label)

	got := Recommend(h, "medium")
	assert.Equal(t, "hard", got.RecommendedDifficulty)
	assert.Contains(t, got.Recommendations, "Reduce cognitive load and revisit foundational concepts.")

	// Best score below 0.85: no step up, and nothing else applies.
	h = history([]float64{0.8125, 0.75, 0.6875}, true, true, true)
	got = Recommend(h, "medium")
	assert.Equal(t, "medium", got.RecommendedDifficulty)
	assert.Equal(t, holdReasoning, got.Reasoning)
}

func TestStruggleBoundaries(t *testing.T) {
	// accuracy exactly 0.45 steps down
	assert.Equal(t, "easy", Recommend(history([]float64{0.45}), "medium").RecommendedDifficulty)

	// just above both thresholds holds
	assert.Equal(t, "medium", Recommend(history([]float64{0.46}), "medium").RecommendedDifficulty)
}

func TestWindowUsesLastFiveRecords(t *testing.T) {
	h := history([]float64{0.0, 0.0, 0.0, 0.9, 0.9, 0.9, 0.9, 0.9})
	got := Recommend(h, "medium")
	assert.InDelta(t, 0.9, got.CurrentPerformance.ConsistencyScore, 1e-9)
	// Confidence counts the whole history: 0.3 + 8*0.05
	assert.Equal(t, 0.7, got.Confidence)
}

func TestConfidenceCaps(t *testing.T) {
	h := history(make([]float64, 20), make([]bool, 20)...)
	got := Recommend(h, "medium")
	// 0.3 + 10*0.05 + 0.1 = 0.9
	assert.Equal(t, 0.9, got.Confidence)
}

func TestScoresAreClampedForAveragesOnly(t *testing.T) {
	records := toRecords(history([]float64{1.5, -0.5, 0.5}))
	m := ComputeMetrics(records)
	assert.InDelta(t, 0.5, m.AvgConsistency, 1e-9)
	assert.Equal(t, 1.0, m.BestConsistency)

	tr := ComputeTrend(records)
	// early = 1.5, late = mean(-0.5, 0.5) = 0
	assert.Equal(t, TrendDeclining, tr.Label)
	assert.InDelta(t, -1.5, tr.Delta, 1e-9)
}

func TestTrendNeedsThreeRecords(t *testing.T) {
	tr := ComputeTrend(toRecords(history([]float64{0.1, 0.9})))
	assert.Equal(t, TrendInsufficient, tr.Label)
	assert.Equal(t, 0.0, tr.Delta)
}

func TestUnknownDifficultyTreatedAsMedium(t *testing.T) {
	got := Recommend(history([]float64{0.1, 0.1, 0.1}), "impossible")
	assert.Equal(t, "easy", got.RecommendedDifficulty)
}

func TestMalformedRecordsCountAsEmpty(t *testing.T) {
	got := Recommend([]any{"oops", 3.0, map[string]any{"consistency_score": "high"}}, "medium")
	assert.Equal(t, 0.0, got.CurrentPerformance.ConsistencyScore)
	assert.Equal(t, "easy", got.RecommendedDifficulty)
}

func TestRecommendInput(t *testing.T) {
	got, err := RecommendInput(`[{"consistency_score":0.9,"is_correct":true}]`, "easy")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got.Confidence))

	_, err = RecommendInput(`{"consistency_score":0.9}`, "easy")
	var mErr *jsonlike.MalformedInputError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "student_history", mErr.Field)
}

func toRecords(h []any) []map[string]any {
	out := make([]map[string]any, len(h))
	for i, r := range h {
		out[i] = r.(map[string]any)
	}
	return out
}
