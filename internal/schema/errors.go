package schema

import (
	"errors"
	"fmt"
)

// CompileError reports a problem in the collection declarations.
type CompileError struct {
	Collection string
	Field      string
	Message    string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema: %s.%s: %s", e.Collection, e.Field, e.Message)
	}
	return fmt.Sprintf("schema: %s: %s", e.Collection, e.Message)
}

// ValidationError reports malformed arguments to a constructor or
// function: wrong arity, wrong type, blank required value, or a
// composite id that does not match its construction rule. Validation
// errors are surfaced verbatim and never retried.
type ValidationError struct {
	Collection string
	Arg        string
	Message    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("validation: %s: argument %q: %s", e.Collection, e.Arg, e.Message)
	}
	return fmt.Sprintf("validation: %s: %s", e.Collection, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
