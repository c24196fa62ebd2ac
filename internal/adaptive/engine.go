// Package adaptive recommends the next difficulty level from a learner's
// recent session history.
package adaptive

import (
	"math"
	"strings"

	"github.com/abhisek/mathsim/internal/jsonlike"
)

// Difficulty levels, easiest first.
var Levels = []string{"easy", "medium", "hard"}

// Window is the number of most recent sessions considered.
const Window = 5

// Trend labels.
const (
	TrendInsufficient = "insufficient_data"
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
)

// Performance summarizes the considered window.
type Performance struct {
	ConsistencyScore float64 `json:"consistency_score"`
	AccuracyRate     float64 `json:"accuracy_rate"`
	Trend            string  `json:"trend"`
}

// Recommendation is the engine's output.
type Recommendation struct {
	RecommendedDifficulty string      `json:"recommended_difficulty"`
	Reasoning             string      `json:"reasoning"`
	Confidence            float64     `json:"confidence"`
	CurrentPerformance    Performance `json:"current_performance"`
	Recommendations       []string    `json:"recommendations"`
}

// Metrics are computed over the window.
type Metrics struct {
	AvgConsistency  float64
	BestConsistency float64
	Accuracy        float64
	SampleSize      int
	// ExplicitAccuracy is set when at least one record carried is_correct.
	ExplicitAccuracy bool
}

// TrendResult compares the two halves of the window.
type TrendResult struct {
	Label string
	Delta float64
}

// Recommend computes the next difficulty. history holds session records
// oldest first; each record is a mapping with consistency_score and an
// optional is_correct. Records of any other shape count as empty. An
// unknown current difficulty is treated as medium.
func Recommend(history []any, current string) Recommendation {
	if len(history) == 0 {
		return Recommendation{
			RecommendedDifficulty: "medium",
			Reasoning:             "No prior sessions recorded. Begin at a balanced level.",
			Confidence:            0.4,
			CurrentPerformance:    Performance{Trend: TrendInsufficient},
			Recommendations:       []string{"Collect a few sessions before adjusting difficulty"},
		}
	}

	recent := history
	if len(recent) > Window {
		recent = recent[len(recent)-Window:]
	}
	records := make([]map[string]any, len(recent))
	for i, r := range recent {
		m, _ := r.(map[string]any)
		records[i] = m
	}

	metrics := ComputeMetrics(records)
	trend := ComputeTrend(records)
	level, reasoning := choose(levelIndex(current), metrics, trend)

	return Recommendation{
		RecommendedDifficulty: level,
		Reasoning:             reasoning,
		Confidence:            confidence(len(history), metrics),
		CurrentPerformance: Performance{
			ConsistencyScore: metrics.AvgConsistency,
			AccuracyRate:     metrics.Accuracy,
			Trend:            trend.Label,
		},
		Recommendations: advise(metrics, trend),
	}
}

// RecommendInput is Recommend for caller-supplied input, where history
// may be a sequence or a JSON array string.
func RecommendInput(history any, current string) (Recommendation, error) {
	list, err := jsonlike.EnsureList(history)
	if err != nil {
		if mErr, ok := err.(*jsonlike.MalformedInputError); ok {
			mErr.Field = "student_history"
		}
		return Recommendation{}, err
	}
	return Recommend(list, current), nil
}

// ComputeMetrics derives averages over records. Scores are clamped to
// [0,1] before averaging.
func ComputeMetrics(records []map[string]any) Metrics {
	m := Metrics{SampleSize: len(records)}
	if len(records) == 0 {
		return m
	}

	var sum float64
	var correct, explicit int
	for i, r := range records {
		s := clamp01(score(r))
		sum += s
		if i == 0 || s > m.BestConsistency {
			m.BestConsistency = s
		}
		if v, ok := r["is_correct"]; ok {
			explicit++
			if jsonlike.Truthy(v) {
				correct++
			}
		}
	}
	m.AvgConsistency = sum / float64(len(records))

	if explicit > 0 {
		m.ExplicitAccuracy = true
		m.Accuracy = float64(correct) / float64(explicit)
	} else {
		m.Accuracy = m.AvgConsistency
	}
	return m
}

// ComputeTrend compares the mean raw score of the later half of records
// with the earlier half. Fewer than three records give no trend.
func ComputeTrend(records []map[string]any) TrendResult {
	n := len(records)
	if n < 3 {
		return TrendResult{Label: TrendInsufficient}
	}

	mid := n / 2
	var early, late float64
	for i, r := range records {
		if i < mid {
			early += score(r)
		} else {
			late += score(r)
		}
	}
	delta := late/float64(n-mid) - early/float64(mid)

	switch {
	case delta > 0.1:
		return TrendResult{Label: TrendImproving, Delta: delta}
	case delta < -0.1:
		return TrendResult{Label: TrendDeclining, Delta: delta}
	}
	return TrendResult{Label: TrendStable, Delta: delta}
}

func score(r map[string]any) float64 {
	switch v := r["consistency_score"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func levelIndex(current string) int {
	current = strings.ToLower(strings.TrimSpace(current))
	for i, l := range Levels {
		if l == current {
			return i
		}
	}
	return 1
}

func confidence(sessions int, m Metrics) float64 {
	base := 0.3 + float64(min(sessions, 10))*0.05
	if m.ExplicitAccuracy {
		base += 0.1
	}
	return math.Min(0.9, math.Round(base*100)/100)
}

func advise(m Metrics, t TrendResult) []string {
	var recs []string
	if m.AvgConsistency < 0.5 {
		recs = append(recs, "Review recent problems step-by-step to build reliable routines.")
	}
	if m.Accuracy < 0.6 {
		recs = append(recs, "Focus on targeted practice with feedback on mistakes.")
	}
	if t.Label == TrendDeclining {
		recs = append(recs, "Reduce cognitive load and revisit foundational concepts.")
	}
	if m.AvgConsistency >= 0.75 && (t.Label == TrendStable || t.Label == TrendImproving) {
		recs = append(recs, "Introduce slightly more complex problems with scaffolding.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain the current mix of problem types and monitor progress.")
	}
	return recs
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
