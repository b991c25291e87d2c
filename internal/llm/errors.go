package llm

import "fmt"

// ErrorKind classifies how a provider call failed.
type ErrorKind string

// Failure kinds.
const (
	KindAPICall    ErrorKind = "api_call"
	KindIncomplete ErrorKind = "incomplete"
	KindParse      ErrorKind = "parse"
	KindSchema     ErrorKind = "schema"
)

// Error is returned when a provider call fails or its output cannot be used.
// The real-provider gateway never substitutes default values for a failed response.
type Error struct {
	Kind    ErrorKind
	Model   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm %s error (%s): %s: %v", e.Kind, e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm %s error (%s): %s", e.Kind, e.Model, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UnsupportedModelError indicates no provider serves the requested model name.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported llm model: %q", e.Model)
}
