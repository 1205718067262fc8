// Package apperr defines the user-facing error taxonomy of the application.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how it is surfaced to the user.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

// Status returns the HTTP status code used for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Messages shown to the user. The credential message is shared between an
// unknown email and a wrong password.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgForbidden          = "You do not have permission to access this page."
	MsgUnexpected         = "Something went wrong. Please try again later."
)

// Error is an error carrying a kind and a message that is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a user-correctable input error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict returns an error for a uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Auth returns the credential error. Its message never reveals which part of
// the credentials was wrong.
func Auth() *Error {
	return &Error{Kind: KindAuth, Message: MsgInvalidCredentials}
}

// Forbidden returns an error for an authenticated user lacking privileges.
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: MsgForbidden}
}

// NotFound returns an error for a missing resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Unexpected wraps an infrastructure failure. The wrapped error is kept for
// logging, the message shown to users is generic.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: MsgUnexpected, Err: err}
}

// KindOf returns the kind of err. Errors that are not an *Error are unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgUnexpected
}
