// Package usererr carries errors that have a message meant for the person
// using the tool, next to the technical error used in logs.
package usererr

import (
	"errors"
)

// UserError represents an error with both technical and user-friendly messages
type UserError struct {
	Err     error
	UserMsg string
}

func (e *UserError) Error() string {
	return e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// New creates a UserError from a technical message and a user message.
func New(msg, userMsg string) *UserError {
	return &UserError{
		Err:     errors.New(msg),
		UserMsg: userMsg,
	}
}

// Wrap wraps a technical error with a user message
func Wrap(err error, userMsg string) *UserError {
	return &UserError{
		Err:     err,
		UserMsg: userMsg,
	}
}

// Message extracts the user-friendly message from err. Errors that carry no
// user message get a generic one.
func Message(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMsg
	}
	return "Something went wrong. Please try again."
}

// IsUserError reports whether err carries a user message.
func IsUserError(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr)
}
