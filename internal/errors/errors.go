// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrLocked indicates the account is temporarily locked.
	ErrLocked = errors.New("locked")
)

// Detail is a single human-readable failure reported by an operation.
type Detail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// OperationError carries the list of expected failures of an operation
// (duplicate username, invalid token, wrong password). It is an input error,
// so errors.Is(err, ErrInvalidInput) holds.
type OperationError struct {
	Details []Detail
}

// NewOperationError creates an OperationError from the given details.
func NewOperationError(details ...Detail) *OperationError {
	return &OperationError{Details: details}
}

func (e *OperationError) Error() string {
	descriptions := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		descriptions = append(descriptions, d.Description)
	}
	return strings.Join(descriptions, " ")
}

// Unwrap returns ErrInvalidInput.
func (e *OperationError) Unwrap() error {
	return ErrInvalidInput
}

// HasCode reports whether any detail carries the given code.
func (e *OperationError) HasCode(code string) bool {
	for _, d := range e.Details {
		if d.Code == code {
			return true
		}
	}
	return false
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
