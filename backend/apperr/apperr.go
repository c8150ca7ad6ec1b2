// Package apperr defines the classified errors raised by the business
// services. The HTTP boundary maps each kind to a status code exactly
// once, in utils.HandleError.
package apperr

import "errors"

type Kind int

const (
	ValidationFailed Kind = iota
	InvalidState
	AuthRequired
	InvalidToken
	InvalidCredentials
	Forbidden
	NotFound
	Conflict
	Internal
)

type Error struct {
	Kind    Kind
	Message string
	Details interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WithDetails(kind Kind, message string, details interface{}) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// As extracts a classified error, if err carries one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
