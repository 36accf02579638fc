package catalog

import (
	"errors"
	"fmt"
)

// Kind is the error-kind taxonomy domain managers and services use to decide
// how a failure is surfaced, independent of the concrete Go error type.
type Kind int

const (
	// Internal marks an unexpected invariant violation; maps to error code 1099.
	Internal Kind = iota
	// NotFound marks an absent entity id/name/unique_id.
	NotFound
	// Conflict marks a would-be invariant violation (duplicate default,
	// reconfigure while vectors exist).
	Conflict
	// BadRequest marks malformed input: JSON parse failure, missing field,
	// dimension/shape mismatch.
	BadRequest
	// Unauthorized marks a missing/expired/insufficient-permission token.
	Unauthorized
	// Storage marks an underlying catalog or filesystem failure.
	Storage
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case Storage:
		return "storage"
	default:
		return "internal"
	}
}

// Error wraps an underlying error with a Kind so callers further up the
// stack can classify it without string-matching messages.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind.String(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds a *Error of the given kind, wrapping err.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Newf builds a *Error of the given kind from a format string.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, defaulting to Internal if err does not
// carry one (e.g. it originated outside the catalog package).
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Internal
}
