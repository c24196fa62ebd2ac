package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CleanJSON strips markdown code fences from model output and, when the
// remaining text is not valid JSON on its own, extracts the first
// complete JSON object or array embedded in it. Text that contains no
// decodable JSON value is returned trimmed but otherwise unchanged.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop an info string such as "json".
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}

	if s == "" || json.Valid([]byte(s)) {
		return s
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s[start:])))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return s
	}
	return string(raw)
}
