package session

import (
	"strings"

	"github.com/abhisek/mathsim/internal/jsonlike"
)

// Defaults applied when a payload leaves a field out.
const (
	DefaultGradeLevel = "7th"
	DefaultDifficulty = "medium"
	DefaultDisability = "Dyslexia"
)

// Build turns an inbound payload into a State. Caller-supplied JSON
// strings are decoded here so that malformed input is rejected before
// any model call:
//
//   - problem given as text becomes {"problem": text} and marks the
//     problem as provided;
//   - student_attempt is decoded into a mapping and marked as provided;
//   - student_history given as text must decode to an array;
//   - a downstream artifact given as free text (anything not starting
//     with "{") becomes {"text": text}.
//
// The payload is deep-copied first; the State never aliases caller maps.
func Build(payload map[string]any) (*State, error) {
	s := New()
	if c, ok := jsonlike.Clone(payload).(map[string]any); ok {
		payload = c
	}

	meta, err := jsonlike.EnsureDict(payload["metadata"])
	if err != nil {
		return nil, fieldErr("metadata", err)
	}
	for k, v := range meta {
		s.Metadata[k] = v
	}

	wt := jsonlike.Text(payload["workflow_type"])
	if wt == "" {
		wt = jsonlike.Text(s.Metadata[MetaWorkflowType])
	}
	if wt == "" {
		wt = string(WorkflowFull)
	}
	s.Metadata[MetaWorkflowType] = strings.ToLower(strings.TrimSpace(wt))
	if s.WorkflowType() == WorkflowPreTutor && !s.Flag(MetaStopAfter) {
		s.Metadata[MetaStopAfter] = StopStrategies
	}

	s.GradeLevel = textOr(payload["grade_level"], DefaultGradeLevel)
	s.Difficulty = textOr(payload["difficulty"], DefaultDifficulty)
	s.Disability = textOr(payload["disability"], DefaultDisability)
	s.StudentResponse = jsonlike.Text(payload["student_response"])

	for _, f := range []Field{
		FieldThoughtAnalysis,
		FieldStrategies,
		FieldTutorSession,
		FieldConsistencyReport,
		FieldAdaptivePlan,
		FieldDisabilityAnalysis,
	} {
		v, ok := payload[string(f)]
		if !ok || v == nil {
			continue
		}
		m, err := artifactDict(v)
		if err != nil {
			return nil, fieldErr(string(f), err)
		}
		s.artifacts[f] = m
	}

	if v, ok := payload[string(FieldProblem)]; ok && v != nil {
		if m, isMap := v.(map[string]any); isMap {
			s.artifacts[FieldProblem] = m
			s.Metadata[MetaUseProvidedProblem] = true
		} else if text := strings.TrimSpace(jsonlike.Text(v)); text != "" {
			s.artifacts[FieldProblem] = map[string]any{"problem": text}
			s.Metadata[MetaUseProvidedProblem] = true
		}
	}

	if v, ok := payload[string(FieldStudentAttempt)]; ok && v != nil {
		m, err := jsonlike.EnsureDict(v)
		if err != nil {
			return nil, fieldErr(string(FieldStudentAttempt), err)
		}
		s.artifacts[FieldStudentAttempt] = m
		if _, set := s.Metadata[MetaAttemptSource]; !set {
			s.Metadata[MetaAttemptSource] = "provided"
		}
	}

	if v, ok := payload["student_history"]; ok && v != nil {
		history, err := jsonlike.EnsureList(v)
		if err != nil {
			return nil, &jsonlike.MalformedInputError{Field: "student_history", Reason: "must be a JSON array", Err: err}
		}
		s.StudentHistory = history
	}

	return s, nil
}

func artifactDict(v any) (map[string]any, error) {
	if text, ok := v.(string); ok {
		text = strings.TrimSpace(text)
		if text != "" && !strings.HasPrefix(text, "{") {
			return map[string]any{"text": text}, nil
		}
	}
	return jsonlike.EnsureDict(v)
}

func textOr(v any, fallback string) string {
	if t := strings.TrimSpace(jsonlike.Text(v)); t != "" {
		return t
	}
	return fallback
}

func fieldErr(field string, err error) error {
	if m, ok := err.(*jsonlike.MalformedInputError); ok {
		return &jsonlike.MalformedInputError{Field: field, Reason: m.Reason, Err: m.Err}
	}
	return &jsonlike.MalformedInputError{Field: field, Reason: "invalid value", Err: err}
}
