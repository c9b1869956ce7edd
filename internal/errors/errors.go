// Package errors defines the engine's typed failures.
//
// Every error carries a Code, the broad class that picks a transport status,
// and usually a Reason naming the exact failure kind (TAG_NOT_FOUND,
// ALREADY_CHALLENGED). Services declare one sentinel per kind:
//
//	var ErrTagNotFound = errors.NotFoundReason("TAG_NOT_FOUND", "tag not found")
//
// and return copies with a specific message:
//
//	return ErrTagNotFound.WithMessagef("tag %q does not exist", content)
//
// Callers test either the kind or the class:
//
//	errors.Is(err, service.ErrTagNotFound)
//	errors.Is(err, errors.ErrNotFound)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Code is the broad class of a failure.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeInternal     Code = "INTERNAL"
)

var codeStatus = map[Code]int{
	CodeNotFound:     http.StatusNotFound,
	CodeConflict:     http.StatusConflict,
	CodeValidation:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
}

// HTTPStatus maps a code to a response status. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := codeStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a typed engine failure.
type Error struct {
	Code    Code   `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error of the same Code whose Reason is empty or equal.
// A reasonless target therefore matches every kind in its class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e.Code != t.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// HTTPStatus returns the response status for the error's code.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WithMessage returns a copy with msg. The copy still matches e under Is.
func (e *Error) WithMessage(msg string) *Error {
	c := e.clone()
	c.Message = msg
	return c
}

// WithMessagef is WithMessage with formatting.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy carrying structured details.
func (e *Error) WithDetails(details any) *Error {
	c := e.clone()
	c.Details = details
	return c
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := e.clone()
	c.cause = err
	return c
}

// Class sentinels, for errors.Is against any kind of a class.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundReason creates a not found error for a specific entity kind.
func NotFoundReason(reason, msg string) *Error {
	return &Error{Code: CodeNotFound, Reason: reason, Message: msg}
}

// ConflictReason creates a conflict error for a specific failure kind.
func ConflictReason(reason, msg string) *Error {
	return &Error{Code: CodeConflict, Reason: reason, Message: msg}
}

// ForbiddenReason creates a forbidden error for a specific failure kind.
func ForbiddenReason(reason, msg string) *Error {
	return &Error{Code: CodeForbidden, Reason: reason, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationReason creates a validation error for a specific failure kind.
func ValidationReason(reason, msg string) *Error {
	return &Error{Code: CodeValidation, Reason: reason, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}
