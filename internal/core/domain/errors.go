package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers malformed, tampered and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("not authorized")

	ErrForbidden     = errors.New("access forbidden")
	ErrAccountLocked = fmt.Errorf("%w: account is locked", ErrForbidden)
	ErrNotAdmin      = fmt.Errorf("%w: admin privilege required", ErrForbidden)

	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// ValidationError reports malformed client input. Its message is safe to
// return to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
