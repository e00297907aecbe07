package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront client
var (
	// Identity errors
	ErrUserNotFound = errors.New("user not found")
	ErrWeakPassword = errors.New("password does not meet requirements")

	// Token errors
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidAccessToken  = errors.New("invalid access token")

	// Storage errors
	ErrStorage        = errors.New("session storage failure")
	ErrCorruptedState = errors.New("persisted session state is corrupted")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need only this package.
func New(text string) error {
	return errors.New(text)
}
