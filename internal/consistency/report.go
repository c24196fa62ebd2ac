package consistency

// Result is the common part of every rubric check.
type Result struct {
	Score   float64 `json:"score"`
	Status  string  `json:"status"`
	Details string  `json:"details"`
}

// StepAnswerCheck compares the final answer with the numbers in the
// student's steps.
type StepAnswerCheck struct {
	Result
	StepAnswers []string `json:"step_answers,omitempty"`
}

// BehaviorCheck matches the attempt against the disability's behavior
// catalog.
type BehaviorCheck struct {
	Result
	ExpectedFound   []string `json:"expected_found"`
	UnexpectedFound []string `json:"unexpected_found"`
}

// ReasoningCheck scores the mathematical shape of the work.
type ReasoningCheck struct {
	Result
	HasOperations    *bool `json:"has_operations,omitempty"`
	HasProgression   *bool `json:"has_progression,omitempty"`
	ReasonableAnswer *bool `json:"reasonable_answer,omitempty"`
}

// ErrorPatternCheck matches the attempt against the disability's error
// signatures.
type ErrorPatternCheck struct {
	Result
	ExpectedPatterns []string `json:"expected_patterns"`
	FoundPatterns    []string `json:"found_patterns"`
}

// CompletenessCheck scores field presence and content length.
type CompletenessCheck struct {
	Result
	PresentFields []string `json:"present_fields"`
	MissingFields []string `json:"missing_fields"`
}

// Checks holds the five rubric results.
type Checks struct {
	StepAnswerConsistency StepAnswerCheck   `json:"step_answer_consistency"`
	DisabilityBehavior    BehaviorCheck     `json:"disability_behavior"`
	MathematicalReasoning ReasoningCheck    `json:"mathematical_reasoning"`
	ErrorPatterns         ErrorPatternCheck `json:"error_patterns"`
	Completeness          CompletenessCheck `json:"completeness"`
}

// Scores returns the check scores in rubric order.
func (c Checks) Scores() []float64 {
	return []float64{
		c.StepAnswerConsistency.Score,
		c.DisabilityBehavior.Score,
		c.MathematicalReasoning.Score,
		c.ErrorPatterns.Score,
		c.Completeness.Score,
	}
}

// Report is the outcome of validating one student attempt.
type Report struct {
	OverallConsistencyScore float64  `json:"overall_consistency_score"`
	Checks                  Checks   `json:"checks"`
	Recommendations         []string `json:"recommendations"`
	Flags                   []string `json:"flags"`
}
