package store

import (
	"errors"
	"fmt"
)

// Error is a storage-level failure with a message and optional cause.
// Two Errors match under errors.Is when they share a Kind.
type Error struct {
	Kind    string
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

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// WithMessage returns a copy of e with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg, Err: e.Err}
}

// Sentinel errors.
var (
	ErrNotFound      = &Error{Kind: "not_found", Message: "resource not found"}
	ErrAlreadyExists = &Error{Kind: "already_exists", Message: "resource already exists"}
	ErrInvalidInput  = &Error{Kind: "invalid_input", Message: "invalid input"}
)
