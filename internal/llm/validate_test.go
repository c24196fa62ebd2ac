package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func problemSchema() *Schema {
	return &Schema{
		Name:        "test-problem",
		Description: "A generated math problem",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"problem":    map[string]any{"type": "string", "minLength": 1},
				"answer":     map[string]any{"type": []any{"string", "number"}},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"problem", "answer"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"problem":"What is 6 x 7?","answer":"42","difficulty":"easy"}`, false},
		{"numeric answer", `{"problem":"What is 6 x 7?","answer":42}`, false},
		{"missing answer", `{"problem":"What is 6 x 7?"}`, true},
		{"empty problem", `{"problem":"","answer":"42"}`, true},
		{"unknown difficulty", `{"problem":"p","answer":"1","difficulty":"extreme"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(problemSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if string(invErr.Content) != tt.raw {
				t.Errorf("Content = %q, want the raw reply", invErr.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateValue_Attempt(t *testing.T) {
	schema := &Schema{
		Name: "test-attempt",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"steps_to_solve": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"final_answer": map[string]any{"type": []any{"string", "number", "null"}},
			},
			"required": []any{"steps_to_solve"},
		},
	}

	var valid any
	_ = json.Unmarshal([]byte(`{"steps_to_solve":["12 + 5 = 17"],"final_answer":null}`), &valid)
	if err := ValidateValue(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	var invalid any
	_ = json.Unmarshal([]byte(`{"steps_to_solve":[17]}`), &invalid)
	if err := ValidateValue(schema, invalid); err == nil {
		t.Fatal("expected error for a non-string step")
	}
}

func TestValidateValue_CompiledOnce(t *testing.T) {
	schema := problemSchema()
	schema.Name = "test-problem-cached"
	value := map[string]any{"problem": "What is 2 + 2?", "answer": "4"}

	if err := ValidateValue(schema, value); err != nil {
		t.Fatalf("first validation: %v", err)
	}
	if _, ok := schemaCache.Load(schema.Name); !ok {
		t.Fatal("compiled schema was not cached")
	}
	if err := ValidateValue(schema, value); err != nil {
		t.Fatalf("cached validation: %v", err)
	}
}
