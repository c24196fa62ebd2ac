package server

import "github.com/abhisek/mathsim/internal/llm"

func optional(types ...string) map[string]any {
	return map[string]any{"type": append(types, "null")}
}

var sessionProperties = map[string]any{
	"grade_level":      optional("string"),
	"difficulty":       optional("string"),
	"disability":       optional("string"),
	"student_history":  optional("array", "string"),
	"student_attempt":  optional("object", "string"),
	"student_response": optional("string"),
	"problem":          optional("object", "string"),
	"metadata":         optional("object"),
	"workflow_type":    optional("string"),
}

// sessionRequest covers /full-workflow, /workflow and /session.
var sessionRequest = &llm.Schema{
	Name:       "session-request",
	Definition: map[string]any{"type": "object", "properties": sessionProperties},
}

// analysisRequest requires the caller's problem and attempt.
var analysisRequest = &llm.Schema{
	Name: "analysis-request",
	Definition: map[string]any{
		"type":       "object",
		"properties": sessionProperties,
		"required":   []any{"problem", "student_attempt"},
	},
}

var problemRequest = &llm.Schema{
	Name: "problem-request",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"grade_level": optional("string"),
			"difficulty":  optional("string"),
			"metadata":    optional("object"),
		},
	},
}

var consistencyRequest = &llm.Schema{
	Name: "consistency-request",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problem":         optional("object", "string"),
			"disability":      optional("string"),
			"student_attempt": optional("object", "string"),
			"expected_answer": optional("string", "number"),
		},
	},
}

var adaptiveRequest = &llm.Schema{
	Name: "adaptive-request",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"student_history":    optional("array", "string"),
			"current_difficulty": optional("string"),
		},
	},
}
