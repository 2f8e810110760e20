package authz

import (
	"errors"
	"fmt"
)

// DeniedError reports a failed authorization check. It is surfaced to the
// end user verbatim and never retried.
type DeniedError struct {
	Collection string
	Function   string // constructor is "constructor", delete is "del"
	Reason     string
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("authorization denied: %s.%s: %s", e.Collection, e.Function, e.Reason)
	}
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

// IsDenied reports whether err is (or wraps) an authorization denial.
func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}
