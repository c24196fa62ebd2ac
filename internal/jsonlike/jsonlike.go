// Package jsonlike holds helpers for the loosely typed JSON values that
// flow between workflow steps: map[string]any, []any, string, float64,
// bool and nil, as produced by encoding/json.
package jsonlike

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mohae/deepcopy"
)

// MalformedInputError reports caller-supplied data that could not be
// coerced into the expected JSON shape.
type MalformedInputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// EnsureDict coerces v into a mapping. nil and blank strings become an
// empty mapping; a string must hold a JSON object.
func EnsureDict(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	case json.RawMessage:
		return EnsureDict(string(t))
	case []byte:
		return EnsureDict(string(t))
	case string:
		text := strings.TrimSpace(t)
		if text == "" {
			return map[string]any{}, nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return nil, &MalformedInputError{Reason: "expected JSON object string", Err: err}
		}
		m, ok := parsed.(map[string]any)
		if !ok {
			return nil, &MalformedInputError{Reason: "expected JSON object after parsing"}
		}
		return m, nil
	}
	return nil, &MalformedInputError{Reason: fmt.Sprintf("expected dictionary payload or JSON object string, got %T", v)}
}

// EnsureList coerces v into a sequence. nil becomes an empty sequence; a
// string must hold a JSON array.
func EnsureList(v any) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return t, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, nil
	case json.RawMessage:
		return EnsureList(string(t))
	case string:
		text := strings.TrimSpace(t)
		if text == "" {
			return []any{}, nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return nil, &MalformedInputError{Reason: "expected JSON array string", Err: err}
		}
		list, ok := parsed.([]any)
		if !ok {
			return nil, &MalformedInputError{Reason: "expected JSON array after parsing"}
		}
		return list, nil
	}
	return nil, &MalformedInputError{Reason: fmt.Sprintf("expected array payload or JSON array string, got %T", v)}
}

// Dumps serializes v for embedding in a prompt. HTML characters and
// non-ASCII text are written as is.
func Dumps(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Truthy reports whether v counts as present: non-nil, non-zero and, for
// strings and collections, non-empty.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	case json.RawMessage:
		s := strings.TrimSpace(string(t))
		return s != "" && s != "null" && s != "{}" && s != "[]" && s != `""`
	}
	return true
}

// Text renders a scalar the way it reads in a sentence. Whole floats drop
// their fractional part and nil becomes the empty string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	case map[string]any, []any:
		return Dumps(t)
	}
	return fmt.Sprint(v)
}

// String returns m[key] rendered with Text, or "" when m is nil.
func String(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return Text(m[key])
}

// Map returns m[key] when it is a mapping.
func Map(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key].(map[string]any)
	return v, ok
}

// Clone returns a deep copy of a JSON-like value.
func Clone(v any) any {
	return deepcopy.Copy(v)
}
