package service

import "errors"

// Error kinds. Handlers map them onto HTTP statuses with errors.Is; any
// other error is an internal failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a failure whose Message is safe to show to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error   { return &Error{Kind: ErrValidation, Message: msg} }
func notFoundError(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func conflictError(msg string) error     { return &Error{Kind: ErrConflict, Message: msg} }
func unauthorizedError(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

// isClientError reports whether err already carries a client-facing message.
func isClientError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
