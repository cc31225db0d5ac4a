package types

import "fmt"

// InputError indicates a malformed or incomplete request. It is rejected
// before any processing and is not retryable.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// ExtractionUnavailable indicates the external language capability could not
// be reached within the retry budget. Callers may retry the whole request.
type ExtractionUnavailable struct {
	Cause error
}

func (e *ExtractionUnavailable) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction unavailable: %v", e.Cause)
	}
	return "extraction unavailable"
}

func (e *ExtractionUnavailable) Unwrap() error {
	return e.Cause
}

// InvariantViolation indicates an internal consistency failure, such as PII
// surviving into a built report. It is never a caller error and the
// offending artifact is withheld.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violation: %s", e.Message)
}
