package adaptive

// rule is one difficulty adjustment. step is -1, 0 or +1.
type rule struct {
	name      string
	step      int
	reasoning string
	applies   func(m Metrics, t TrendResult) bool
}

// rules are evaluated in priority order; the first rule that applies and
// can move in its direction wins. A strong record therefore never
// reaches the step-down rules, even when another signal is weak.
var rules = []rule{
	{
		name:      "excellent",
		step:      +1,
		reasoning: "Recent work is consistently strong. Increasing challenge level.",
		applies: func(m Metrics, _ TrendResult) bool {
			return m.Accuracy >= 0.8 && m.AvgConsistency >= 0.75 && m.BestConsistency >= 0.85
		},
	},
	{
		name:      "struggling",
		step:      -1,
		reasoning: "Student is struggling with current level. Reducing difficulty for consolidation.",
		applies: func(m Metrics, _ TrendResult) bool {
			return m.Accuracy <= 0.45 || m.AvgConsistency <= 0.4
		},
	},
	{
		name:      "declining",
		step:      -1,
		reasoning: "Recent decline in performance detected. Lowering difficulty to rebuild confidence.",
		applies: func(m Metrics, t TrendResult) bool {
			return t.Label == TrendDeclining && m.AvgConsistency < 0.6
		},
	},
	{
		name:      "improving",
		step:      +1,
		reasoning: "Performance is steadily improving. Introducing the next difficulty step.",
		applies: func(m Metrics, t TrendResult) bool {
			return t.Label == TrendImproving && m.AvgConsistency >= 0.7
		},
	},
}

const holdReasoning = "Keep practicing at the current level to gather more data before adjusting."

// choose applies the rules to the level at index current.
func choose(current int, m Metrics, t TrendResult) (string, string) {
	for _, r := range rules {
		next := current + r.step
		if next < 0 || next >= len(Levels) {
			continue
		}
		if r.applies(m, t) {
			return Levels[next], r.reasoning
		}
	}
	return Levels[current], holdReasoning
}
