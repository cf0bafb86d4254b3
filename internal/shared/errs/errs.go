// Package errs defines the shell's error taxonomy.
//
// Data-model violations (InvalidOperation, InvalidState) surface synchronously
// to the caller; stale-reference races (NotFound) are absorbed on async event
// paths; surface faults travel the event-notification path, never as errors.
package errs

import (
	"errors"
	"fmt"
)

// Code classifies a shell error
type Code string

const (
	// InvalidOperation rejects an operation that is never legal for its
	// target, such as deleting the default realm
	InvalidOperation Code = "invalid_operation"

	// InvalidState rejects an operation whose inputs disagree with current
	// state, such as a reorder with a mismatched id set
	InvalidState Code = "invalid_state"

	// NotFound marks a reference to a missing realm, dock, or tab
	NotFound Code = "not_found"

	// SurfaceCrash marks a crashed browsing surface
	SurfaceCrash Code = "surface_crash"

	// FaviconFetch marks a failed favicon or metadata fetch
	FaviconFetch Code = "favicon_fetch"
)

// Error is a coded shell error
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// New creates a coded error
func New(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from an error chain, or "" when uncoded
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the error chain carries the given code
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
