package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session and sign-in middleware
var (
	// Configuration errors
	ErrInvalidConfig        = errors.New("invalid oidc config")
	ErrInvalidSessionConfig = errors.New("invalid session config")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrEmptyKey         = errors.New("key cannot be empty")
	ErrOddFieldValues   = errors.New("field/value list must have an even length")

	// Session errors
	ErrInvalidIdentity = errors.New("invalid identity")

	// Sign-in errors
	ErrInvalidToken = errors.New("invalid token")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
