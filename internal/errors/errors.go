package errors

import (
	"errors"
	"fmt"
)

// Common error types for the web gateway
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")

	// Checkout errors
	ErrUnknownPlan    = errors.New("unknown subscription plan")
	ErrNoCheckoutURL  = errors.New("no checkout URL returned")
	ErrMissingSession = errors.New("missing payment session id")

	// Remote backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBadResponse        = errors.New("malformed backend response")

	// General errors
	ErrNotFound = errors.New("not found")
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
