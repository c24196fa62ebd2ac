package workflow

import (
	"errors"
	"fmt"

	"github.com/abhisek/mathsim/internal/jsonlike"
)

// MissingPrerequisiteError means a step needed an upstream artifact that
// is not in the state.
type MissingPrerequisiteError struct {
	Step  string
	Field string
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s is required", e.Step, e.Field)
}

// EmptyGenerationError means the model answered a step with an empty or
// non-object payload.
type EmptyGenerationError struct {
	Step   string
	Reason string
}

func (e *EmptyGenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Reason)
}

// MissingInputError means a workflow was called without an input it
// cannot run without.
type MissingInputError struct {
	Workflow string
	Field    string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s is required for %s workflow", e.Field, e.Workflow)
}

// IsInputError reports whether err was caused by the caller's payload
// rather than by the model or the transport.
func IsInputError(err error) bool {
	var (
		malformed *jsonlike.MalformedInputError
		missing   *MissingInputError
		prereq    *MissingPrerequisiteError
	)
	return errors.As(err, &malformed) || errors.As(err, &missing) || errors.As(err, &prereq)
}
