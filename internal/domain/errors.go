package domain

import "errors"

// Error kinds. Every failure that reaches the HTTP boundary is one of these
// or is treated as internal.
var (
	ErrValidation   = errors.New("validation failed")
	ErrDuplicate    = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Error pairs an error kind with a message that is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is lets errors.Is match the kind.
func (e *Error) Is(target error) bool { return e.Kind == target }

// NewError builds an *Error of the given kind.
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Validation is shorthand for NewError(ErrValidation, message).
func Validation(message string) error { return NewError(ErrValidation, message) }

// NotFound is shorthand for NewError(ErrNotFound, message).
func NotFound(message string) error { return NewError(ErrNotFound, message) }

// Duplicate is shorthand for NewError(ErrDuplicate, message).
func Duplicate(message string) error { return NewError(ErrDuplicate, message) }
