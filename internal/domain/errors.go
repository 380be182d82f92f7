package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation. Handlers map kinds to HTTP status codes.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_failure"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidState      ErrorKind = "invalid_state"
	KindForbidden         ErrorKind = "forbidden"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindUnexpected        ErrorKind = "unexpected"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: KindConflict}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func Validation(msg string) error        { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error          { return &Error{Kind: KindConflict, Message: msg} }
func InvalidState(msg string) error      { return &Error{Kind: KindInvalidState, Message: msg} }
func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Message: msg} }
func InsufficientFunds(msg string) error { return &Error{Kind: KindInsufficientFunds, Message: msg} }

// Unexpected wraps an infrastructure failure. Already classified errors pass through unchanged.
func Unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindUnexpected, Message: op, Err: err}
}

// KindOf returns the kind of err, KindUnexpected for unclassified errors and "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// Message returns the human-readable part of a classified error.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
