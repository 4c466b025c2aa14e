package domain

import "errors"

// Authentication and session errors
var (
	// ErrInvalidCredentials is returned when a login attempt does not match
	// a known member record. User-facing; shown inline on the login form.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBackendUnreachable is returned when the remote backend cannot be
	// reached during login (network failure or timeout). Transient; never
	// auto-retried by this core.
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrNotAuthenticated signals that a credential did not resolve to a
	// live session (expired, revoked or absent). It is a valid terminal
	// state of a session read, not a failure.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMalformedCredential is returned for tokens that cannot be decoded.
	// Callers treat it exactly like an expired credential (fail-closed).
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrMemberNotFound is returned by the local record set when no member
	// matches the given key.
	ErrMemberNotFound = errors.New("member not found")

	// ErrMemberAlreadyExists is returned when seeding a member whose email
	// is already registered.
	ErrMemberAlreadyExists = errors.New("member already exists")
)

// AuthError represents authentication-related errors with additional context
type AuthError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new authentication error
func NewAuthError(code, message string, cause error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common auth error codes
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
	ErrCodeNotAuthenticated   = "NOT_AUTHENTICATED"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)
