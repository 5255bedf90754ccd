package services

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; the HTTP layer maps each one to a status code.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrPersistence  = errors.New("persistence error")
)

// Error carries a client-facing message next to its kind and the underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func validationError(msg string) error { return newError(ErrValidation, msg, nil) }
func conflictError(msg string) error   { return newError(ErrConflict, msg, nil) }
func notFoundError(msg string) error   { return newError(ErrNotFound, msg, nil) }

func persistenceError(msg string, cause error) error {
	return newError(ErrPersistence, msg, cause)
}
