package invoker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/mathsim/internal/llm"
)

// NormalizePayload coerces a handler or model result into JSON-like data.
//
//   - nil becomes an empty mapping.
//   - A response envelope (*llm.Response or json.RawMessage) has its body
//     cleaned of code fences and decoded. An empty body is an empty
//     mapping.
//   - map[string]any and []any pass through unchanged.
//   - A string must decode to a mapping or sequence. Blank is an empty
//     mapping.
//   - Anything else is an UnsupportedPayloadError.
func NormalizePayload(payload any) (any, error) {
	switch p := payload.(type) {
	case nil:
		return map[string]any{}, nil
	case *llm.Response:
		if p == nil {
			return map[string]any{}, nil
		}
		return decodeEnvelope(p.Text())
	case json.RawMessage:
		return decodeEnvelope(string(p))
	case map[string]any:
		return p, nil
	case []any:
		return p, nil
	case string:
		text := strings.TrimSpace(p)
		if text == "" {
			return map[string]any{}, nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return nil, &PayloadDecodeError{Source: "string payload", Body: text, Err: err}
		}
		switch parsed.(type) {
		case map[string]any, []any:
			return parsed, nil
		}
		return nil, &UnsupportedPayloadError{Reason: "parsed payload is not a JSON object or array"}
	}
	return nil, &UnsupportedPayloadError{Type: fmt.Sprintf("%T", payload)}
}

func decodeEnvelope(body string) (any, error) {
	text := llm.CleanJSON(body)
	if text == "" {
		return map[string]any{}, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &PayloadDecodeError{Source: "response body", Body: text, Err: err}
	}
	return parsed, nil
}
