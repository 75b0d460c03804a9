// Package result carries the tagged error taxonomy used by all business
// operations: services return a *result.Error for expected failures instead
// of panicking, and the API layer maps the kind to an HTTP status.
package result

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business failure.
type Kind int

const (
	// KindFailure is an unclassified internal failure, including upstream
	// service errors. Mapped to 500 with a non-leaking message.
	KindFailure Kind = iota
	// KindValidation is malformed or business-rule-violating input.
	KindValidation
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindConflict is a state collision (overlapping booking, duplicate user).
	KindConflict
	// KindUnauthorized means the identity or credential check failed.
	KindUnauthorized
)

// Error is a business failure with a kind and human-readable description.
type Error struct {
	Kind        Kind
	Description string
}

func (e *Error) Error() string { return e.Description }

// Validation builds a KindValidation error.
func Validation(description string) *Error {
	return &Error{Kind: KindValidation, Description: description}
}

// NotFound builds a KindNotFound error for a named entity, optionally keyed.
func NotFound(entity string, key any) *Error {
	if key == nil {
		return &Error{Kind: KindNotFound, Description: fmt.Sprintf("%s was not found.", entity)}
	}
	return &Error{Kind: KindNotFound, Description: fmt.Sprintf("%s with key '%v' was not found.", entity, key)}
}

// Conflict builds a KindConflict error.
func Conflict(description string) *Error {
	return &Error{Kind: KindConflict, Description: description}
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(description string) *Error {
	return &Error{Kind: KindUnauthorized, Description: description}
}

// Failure builds a KindFailure error.
func Failure(description string) *Error {
	return &Error{Kind: KindFailure, Description: description}
}

// Failuref builds a KindFailure error with a formatted description.
func Failuref(format string, args ...any) *Error {
	return &Error{Kind: KindFailure, Description: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps the kind to the status code served at the API boundary.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// From extracts a *Error from err, wrapping anything else as KindFailure so
// unexpected errors never leak detail past the boundary untagged.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindFailure, Description: err.Error()}
}
