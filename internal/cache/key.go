package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Set marks an unordered collection. Its elements are normalized and then
// sorted by their serialized form, so two sets with the same members
// derive the same key regardless of insertion order.
type Set []any

// HandlerKey derives the key for a generic handler call identified by its
// qualified name.
func HandlerKey(handler string, args []any, kwargs map[string]any) string {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return Derive(map[string]any{
		"handler": handler,
		"args":    args,
		"kwargs":  kwargs,
	})
}

// ChatKey derives the key for a chat call.
func ChatKey(messages any, model string, temperature float64) string {
	return Derive(map[string]any{
		"type":        "chat",
		"messages":    messages,
		"model":       model,
		"temperature": temperature,
	})
}

// PromptKey derives the key for a single-prompt call.
func PromptKey(prompt, model string, temperature float64) string {
	return Derive(map[string]any{
		"type":        "prompt",
		"prompt":      prompt,
		"model":       model,
		"temperature": temperature,
	})
}

// Derive normalizes v, serializes it compactly with sorted keys and
// returns the hex SHA-256 of the result.
func Derive(v any) string {
	sum := sha256.Sum256(encode(Normalize(v)))
	return hex.EncodeToString(sum[:])
}

// Normalize rewrites v into a structure whose JSON encoding is
// independent of map iteration and set insertion order. Values that have
// no JSON form are rendered with fmt's %v verb.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(t, &decoded); err != nil {
			return string(t)
		}
		return Normalize(decoded)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case Set:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return bytes.Compare(encode(out[i]), encode(out[j])) < 0
		})
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Struct:
		// Structs with JSON tags round-trip through their JSON form.
		if data, err := json.Marshal(v); err == nil {
			var decoded any
			if json.Unmarshal(data, &decoded) == nil {
				return Normalize(decoded)
			}
		}
	}
	return fmt.Sprintf("%v", v)
}

// encode serializes a normalized value. encoding/json writes map keys in
// sorted order and no insignificant whitespace.
func encode(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return []byte(fmt.Sprintf("%v", v))
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
