package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the identity is not in the table.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeIdentityMismatch indicates a persisted key disagrees with the
	// class and id of the instance stored under it.
	ErrCodeIdentityMismatch ErrorCode = "IDENTITY_MISMATCH"
)

// Error is a store error tied to one identity.
type Error struct {
	Code     ErrorCode
	Identity string
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (identity=%s)", e.Code, e.Message, e.Identity)
	}
	return fmt.Sprintf("%s: identity=%s", e.Code, e.Identity)
}

// IsNotFound returns true if the error is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeNotFound
	}
	return false
}

func notFound(identity string) *Error {
	return &Error{Code: ErrCodeNotFound, Identity: identity}
}
