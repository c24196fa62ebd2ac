package session

import "github.com/abhisek/mathsim/internal/jsonlike"

// Stop points accepted in metadata.stop_after.
const (
	StopNone        = "none"
	StopAnalysis    = "analysis"
	StopStrategies  = "strategies"
	StopTutor       = "tutor"
	StopConsistency = "consistency"
	StopAdaptive    = "adaptive"
)

// Progress labels reported as current_step.
const (
	StepInitialized          = "initialized"
	StepProblemGenerated     = "problem_generated"
	StepStudentSimulated     = "student_simulated"
	StepThoughtAnalyzed      = "thought_analyzed"
	StepStrategiesGenerated  = "strategies_generated"
	StepTutorSimulated       = "tutor_simulated"
	StepConsistencyValidated = "consistency_validated"
	StepCompleted            = "completed"
)

// Sanitize returns a copy of m without nil or empty values. metadata is
// kept only when non-empty. Sanitizing an already sanitized map returns
// an equal map.
func Sanitize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if !jsonlike.Truthy(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Sanitized is Sanitize(s.Map()).
func (s *State) Sanitized() map[string]any {
	return Sanitize(s.Map())
}

// CurrentStep reports the furthest artifact present in a sanitized state.
func CurrentStep(sanitized map[string]any) string {
	has := func(f Field) bool { return jsonlike.Truthy(sanitized[string(f)]) }
	switch {
	case has(FieldDisabilityAnalysis), has(FieldAdaptivePlan):
		return StepCompleted
	case has(FieldConsistencyReport):
		return StepConsistencyValidated
	case has(FieldTutorSession):
		return StepTutorSimulated
	case has(FieldStrategies):
		return StepStrategiesGenerated
	case has(FieldThoughtAnalysis):
		return StepThoughtAnalyzed
	case has(FieldStudentAttempt):
		return StepStudentSimulated
	case has(FieldProblem):
		return StepProblemGenerated
	}
	return StepInitialized
}

// Envelope is the response shape of every workflow entry point.
type Envelope struct {
	WorkflowType string           `json:"workflow_type"`
	CurrentStep  string           `json:"current_step"`
	Results      map[string]any   `json:"results"`
	Metadata     EnvelopeMetadata `json:"metadata"`
}

// EnvelopeMetadata echoes the learner profile a run used.
type EnvelopeMetadata struct {
	GradeLevel string `json:"grade_level"`
	Difficulty string `json:"difficulty"`
	Disability string `json:"disability"`
}

// Format builds the envelope for a sanitized state. Results carry only
// the non-empty artifacts, under their state keys.
func Format(sanitized map[string]any, workflowType WorkflowType, currentStep string) Envelope {
	results := make(map[string]any)
	for _, f := range ArtifactFields {
		if v := sanitized[string(f)]; jsonlike.Truthy(v) {
			results[string(f)] = v
		}
	}
	return Envelope{
		WorkflowType: string(workflowType),
		CurrentStep:  currentStep,
		Results:      results,
		Metadata: EnvelopeMetadata{
			GradeLevel: jsonlike.String(sanitized, "grade_level"),
			Difficulty: jsonlike.String(sanitized, "difficulty"),
			Disability: jsonlike.String(sanitized, "disability"),
		},
	}
}
