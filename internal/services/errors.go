package services

import (
	"errors"

	"taskhub/internal/repositories"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error is a client-facing failure: Kind selects the status code, Message is shown as is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }
func notFoundError(msg string) error   { return &Error{Kind: ErrNotFound, Message: msg} }
func forbiddenError(msg string) error  { return &Error{Kind: ErrForbidden, Message: msg} }
func conflictError(msg string) error   { return &Error{Kind: ErrConflict, Message: msg} }

// notFoundOr turns a repository miss into a NotFoundError with msg and
// passes every other error through.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFoundError(msg)
	}
	return err
}
