// Package apperr classifies errors into the three outcomes callers can act
// on: bad input, an expected conflict, and a transient backend failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Type string

const (
	// TypeValidation indicates invalid input; nothing was mutated (HTTP 400)
	TypeValidation Type = "validation"
	// TypeNotFound indicates the target does not exist (HTTP 404)
	TypeNotFound Type = "not_found"
	// TypeConflict indicates an expected, recoverable outcome such as
	// NAME_TAKEN or ALREADY_RATED_TODAY; nothing was mutated (HTTP 409)
	TypeConflict Type = "conflict"
	// TypeTransient indicates a storage/network failure eligible for retry (HTTP 503)
	TypeTransient Type = "transient"
)

// Well-known conflict codes.
const (
	CodeNameTaken         = "NAME_TAKEN"
	CodeAlreadyRatedToday = "ALREADY_RATED_TODAY"
)

type Error struct {
	Type    Type
	Code    string // machine-readable, stable across messages
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Type: TypeConflict, Code: code, Message: message}
}

func Transient(message string, cause error) *Error {
	return &Error{Type: TypeTransient, Message: message, Cause: cause}
}

// As converts any error into an *Error, wrapping unknown errors as transient
// storage failures.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Transient("storage unavailable", err)
}

func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == TypeConflict
}

func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == TypeValidation
}

// Code returns the machine-readable code, or "" for unclassified errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
