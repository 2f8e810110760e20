package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/authz"
	"github.com/hearthside/hangouts/internal/club"
	"github.com/hearthside/hangouts/internal/identity"
	"github.com/hearthside/hangouts/internal/schema"
	"github.com/hearthside/hangouts/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation rejected (denied, validation, conflict, ...)
	ExitCommandError = 2 // Command error (bad flags, unreadable config, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps a domain error to its stable machine-readable code.
// Unrecognized errors are "internal".
func ErrorCode(err error) string {
	switch {
	case authz.IsDenied(err):
		return "denied"
	case schema.IsValidation(err):
		return "validation"
	case store.IsNotFound(err):
		return "not-found"
	case store.IsConflict(err):
		return "conflict"
	case errors.Is(err, auth.ErrChallengeUnknown), errors.Is(err, auth.ErrChallengeExpired):
		return "challenge"
	case errors.Is(err, identity.ErrIdentityUnavailable):
		return "identity"
	case club.IsTimeout(err):
		return "timeout"
	default:
		var te *club.TransportError
		if errors.As(err, &te) {
			return "transport"
		}
		return "internal"
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostic output (defaults to Writer)
	Verbose   bool
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError carries the error code and message.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs a successful result in the configured format. For
// text output, data renders with %v unless it is a TextMarshaler-free
// struct the caller already formatted.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a domain error in the configured format and wraps it
// with the failure exit code.
func (f *OutputFormatter) Error(err error) error {
	code := ErrorCode(err)
	if f.Format == "json" {
		if encErr := json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: err.Error()},
		}); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %v\n", code, err)
	}
	return WrapExitError(ExitFailure, code, err)
}

// VerboseLog outputs a message only if verbose mode is enabled. When
// format is JSON, diagnostics go to ErrWriter to avoid corrupting the
// JSON stream.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
