// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Provider errors.
	ErrModelNotLoaded         = errors.New("model not loaded")
	ErrMissingCredential      = errors.New("missing credential")
	ErrUnsupportedProvider    = errors.New("unsupported provider")
	ErrCapabilityNotSupported = errors.New("capability not supported")
	ErrTransport              = errors.New("transport error")

	// Response handling errors.
	ErrUnparseableResponse = errors.New("unparseable response")
	ErrValidation          = errors.New("validation error")
	ErrQueryExecution      = errors.New("query execution failed")

	// Database errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the text to display for err. A UserError shows only its
// message; anything else shows its full error string.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
