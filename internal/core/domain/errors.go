package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("username or email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("access forbidden")
	ErrSelfDeletion       = errors.New("cannot delete your own account")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
)

// ValidationError carries one message per rejected field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
