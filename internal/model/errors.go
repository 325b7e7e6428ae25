package model

import "fmt"

// ValidationError reports a recoverable input problem. The named field is
// left unmodified so the caller can correct it and retry.
type ValidationError struct {
	Source string // owning source name, empty for model-level problems
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Field, e.Reason)
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a model-level ValidationError.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidFor builds a ValidationError tied to a source.
func InvalidFor(source, field, reason string) *ValidationError {
	return &ValidationError{Source: source, Field: field, Reason: reason}
}
