package invoker

import "fmt"

// PayloadDecodeError reports model output that is not valid JSON.
type PayloadDecodeError struct {
	Source string
	Body   string
	Err    error
}

func (e *PayloadDecodeError) Error() string {
	return fmt.Sprintf("unable to parse %s as JSON: %v", e.Source, e.Err)
}

func (e *PayloadDecodeError) Unwrap() error { return e.Err }

// UnsupportedPayloadError reports a handler result that has no JSON-like
// interpretation, or JSON text that decoded to a scalar where a mapping
// or sequence was required.
type UnsupportedPayloadError struct {
	Type   string
	Reason string
}

func (e *UnsupportedPayloadError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("unsupported payload type: %s", e.Type)
}
