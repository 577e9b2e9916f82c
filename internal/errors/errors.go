package errors

import (
	"errors"
	"fmt"
)

// Common error types for the LTI tool backend
var (
	// Login initiation errors
	ErrValidation       = errors.New("missing required OIDC parameters")
	ErrPlatformNotFound = errors.New("platform not registered")

	// Launch verification errors
	ErrMalformedToken       = errors.New("malformed id_token")
	ErrKeyFetch             = errors.New("failed to fetch platform key set")
	ErrUnknownKey           = errors.New("signing key not found in platform key set")
	ErrInvalidAssertion     = errors.New("invalid launch assertion")
	ErrIncompleteAssertion  = errors.New("launch assertion missing required claims")
	ErrReplayOrUnknownState = errors.New("unknown, expired or already consumed state")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
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
