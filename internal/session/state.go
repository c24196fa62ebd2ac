// Package session defines the state threaded through a workflow run and
// the conversions between that state, inbound payloads and the
// externally visible result envelope.
package session

import (
	"strings"

	"github.com/abhisek/mathsim/internal/jsonlike"
)

// WorkflowType selects which sub-workflow a payload runs.
type WorkflowType string

const (
	WorkflowFull         WorkflowType = "full"
	WorkflowProblemOnly  WorkflowType = "problem_only"
	WorkflowAnalysisOnly WorkflowType = "analysis_only"
	WorkflowPreTutor     WorkflowType = "pre_tutor"
)

// WorkflowTypes lists the supported workflows in the order they are
// advertised.
var WorkflowTypes = []WorkflowType{WorkflowProblemOnly, WorkflowFull, WorkflowAnalysisOnly, WorkflowPreTutor}

// Field names an artifact slot of the state. The values double as the
// JSON keys of the external representation.
type Field string

const (
	FieldProblem            Field = "problem"
	FieldStudentAttempt     Field = "student_attempt"
	FieldThoughtAnalysis    Field = "thought_analysis"
	FieldStrategies         Field = "strategies"
	FieldTutorSession       Field = "tutor_session"
	FieldConsistencyReport  Field = "consistency_report"
	FieldAdaptivePlan       Field = "adaptive_plan"
	FieldDisabilityAnalysis Field = "disability_analysis"
)

// ArtifactFields lists the artifact slots in step order.
var ArtifactFields = []Field{
	FieldProblem,
	FieldStudentAttempt,
	FieldThoughtAnalysis,
	FieldStrategies,
	FieldTutorSession,
	FieldConsistencyReport,
	FieldAdaptivePlan,
	FieldDisabilityAnalysis,
}

// Metadata keys.
const (
	MetaWorkflowType       = "workflow_type"
	MetaStopAfter          = "stop_after"
	MetaCacheStatus        = "cache_status"
	MetaUseProvidedProblem = "use_provided_problem"
	MetaAttemptSource      = "student_attempt_source"
	MetaRefreshProblem     = "refresh_problem"
	MetaTargetCorrectness  = "target_correctness"
	MetaErrorStyle         = "error_style"
)

// State is the record a single workflow run reads and extends. Artifact
// fields are nil until the step that owns them runs, or until the caller
// supplies them.
type State struct {
	GradeLevel string
	Difficulty string
	Disability string

	// StudentHistory is the caller's record of earlier sessions. The
	// workflow never modifies it.
	StudentHistory []any

	// StudentResponse is free text written by a real student, used for
	// disability identification.
	StudentResponse string

	artifacts map[Field]map[string]any

	// Metadata carries workflow bookkeeping. It is never nil.
	Metadata map[string]any
}

// New returns an empty state with initialized metadata.
func New() *State {
	return &State{
		artifacts: make(map[Field]map[string]any),
		Metadata:  make(map[string]any),
	}
}

// Artifact returns the artifact in slot f, or nil.
func (s *State) Artifact(f Field) map[string]any {
	return s.artifacts[f]
}

// Has reports whether slot f holds a non-empty artifact.
func (s *State) Has(f Field) bool {
	return len(s.artifacts[f]) > 0
}

// SetArtifact fills slot f unless it already holds a non-empty artifact.
// It reports whether the slot was written.
func (s *State) SetArtifact(f Field, v map[string]any) bool {
	if s.Has(f) {
		return false
	}
	s.artifacts[f] = v
	return true
}

// ReplaceArtifact overwrites slot f. Only an explicit problem refresh
// uses it.
func (s *State) ReplaceArtifact(f Field, v map[string]any) {
	s.artifacts[f] = v
}

// WorkflowType returns the lowercased workflow discriminator, defaulting
// to full.
func (s *State) WorkflowType() WorkflowType {
	wt := strings.ToLower(jsonlike.String(s.Metadata, MetaWorkflowType))
	if wt == "" {
		return WorkflowFull
	}
	return WorkflowType(wt)
}

// StopAfter returns the lowercased stop point, or "".
func (s *State) StopAfter() string {
	return strings.ToLower(strings.TrimSpace(jsonlike.String(s.Metadata, MetaStopAfter)))
}

// Flag reports whether the metadata value under key is truthy.
func (s *State) Flag(key string) bool {
	return jsonlike.Truthy(s.Metadata[key])
}

// MetaString returns the metadata value under key as text.
func (s *State) MetaString(key string) string {
	return jsonlike.String(s.Metadata, key)
}

// RecordCacheStatus notes whether step was served from the cache.
func (s *State) RecordCacheStatus(step string, hit bool) {
	status, ok := s.Metadata[MetaCacheStatus].(map[string]any)
	if !ok {
		status = make(map[string]any)
		s.Metadata[MetaCacheStatus] = status
	}
	status[step] = hit
}

// CacheStatus returns the recorded cache outcome for each executed step.
func (s *State) CacheStatus() map[string]bool {
	out := make(map[string]bool)
	status, _ := s.Metadata[MetaCacheStatus].(map[string]any)
	for k, v := range status {
		hit, _ := v.(bool)
		out[k] = hit
	}
	return out
}

// ProblemText returns problem.problem, or "".
func (s *State) ProblemText() string {
	return jsonlike.String(s.artifacts[FieldProblem], "problem")
}

// ExpectedAnswer returns the trimmed problem.answer, or "".
func (s *State) ExpectedAnswer() string {
	return strings.TrimSpace(jsonlike.String(s.artifacts[FieldProblem], "answer"))
}

// Map renders the full internal state, empty slots included.
func (s *State) Map() map[string]any {
	m := map[string]any{
		"grade_level": s.GradeLevel,
		"difficulty":  s.Difficulty,
		"disability":  s.Disability,
		"metadata":    s.Metadata,
	}
	if s.StudentHistory != nil {
		m["student_history"] = s.StudentHistory
	}
	if s.StudentResponse != "" {
		m["student_response"] = s.StudentResponse
	}
	for _, f := range ArtifactFields {
		if v, ok := s.artifacts[f]; ok {
			m[string(f)] = v
		}
	}
	return m
}
