// Package sources defines the contract between the refresh pipeline and the
// upstream data clients. Fetch outcomes are explicit: a batch of parsed rows
// with a malformed-row count, or a typed unavailability error the caller can
// classify as not-found versus transient. Tolerance policy lives with the
// caller, not the client.
package sources

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a source was unavailable.
type FailureKind string

const (
	// FailureNotFound means the upstream rejected the request for this
	// series or resource (bad id, 404). Retrying will not help.
	FailureNotFound FailureKind = "not_found"
	// FailureTransient covers network errors and upstream 5xx responses.
	FailureTransient FailureKind = "transient"
)

// Error is a typed source-unavailable error.
type Error struct {
	Source string
	Kind   FailureKind
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source %s unavailable (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound wraps err as a permanent not-found failure of the named source.
func NotFound(source string, err error) *Error {
	return &Error{Source: source, Kind: FailureNotFound, Err: err}
}

// Transient wraps err as a retryable failure of the named source.
func Transient(source string, err error) *Error {
	return &Error{Source: source, Kind: FailureTransient, Err: err}
}

// IsNotFound reports whether err is a not-found source failure.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == FailureNotFound
}

// IsTransient reports whether err is a transient source failure.
func IsTransient(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == FailureTransient
}
