// Package apperr defines the error taxonomy surfaced at the service boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies a failure for the caller.
type Code string

const (
	CodeUnauthenticated Code = "unauthenticated"
	CodeInvalidArgument Code = "invalid_argument"
	CodeNotFound        Code = "not_found"
	CodeAlreadyExists   Code = "already_exists"
	CodeRateLimited     Code = "rate_limited"
	CodeInternal        Code = "internal"
)

// ReasonExpired marks an Unauthenticated error caused by an expired credential.
const ReasonExpired = "expired"

const internalMessage = "Internal Server Error"

// Error is the canonical service error.
type Error struct {
	Code    Code
	Op      string
	Message string
	Reason  string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string) error {
	return &Error{Code: code, Op: op, Message: message}
}

func Wrap(code Code, op, message string, cause error) error {
	return &Error{Code: code, Op: op, Message: message, Cause: cause}
}

// Internal wraps cause as an opaque internal failure. A cause that already
// carries a code is returned unchanged.
func Internal(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var appErr *Error
	if errors.As(cause, &appErr) {
		return cause
	}
	return &Error{Code: CodeInternal, Op: op, Message: internalMessage, Cause: cause}
}

func Unauthenticated(op, message string, cause error) error {
	return &Error{Code: CodeUnauthenticated, Op: op, Message: message, Cause: cause}
}

func Expired(op, message string, cause error) error {
	return &Error{Code: CodeUnauthenticated, Op: op, Message: message, Reason: ReasonExpired, Cause: cause}
}

func InvalidArgument(op, message string) error {
	return &Error{Code: CodeInvalidArgument, Op: op, Message: message}
}

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func ReasonOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// PublicMessage is the only text a caller ever sees for err.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Code == CodeInternal || appErr.Message == "" {
		return internalMessage
	}
	return appErr.Message
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
