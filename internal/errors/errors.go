package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSecondFactor       = errors.New("second factor required")

	// Session errors
	ErrNotHydrated    = errors.New("session store not hydrated")
	ErrSessionExpired = errors.New("session expired")

	// Token errors
	ErrInvalidToken      = errors.New("invalid token")
	ErrNoRefreshToken    = errors.New("no refresh token held")
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrBodyNotReplayable = errors.New("request body cannot be replayed")

	// Storage errors
	ErrNotFound = errors.New("not found")

	// General errors
	ErrInternal = errors.New("internal error")
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
