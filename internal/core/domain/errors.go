package domain

import "errors"

// Validation failures (malformed input, rejected before any side effect).
var (
	ErrMissingFields   = errors.New("required fields are missing")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidRole     = errors.New("role must be client or freelancer")
	ErrWeakPassword    = errors.New("password must be at least 8 characters with one uppercase letter, one lowercase letter and one digit")
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// Authentication and token failures. ErrInvalidCredentials deliberately covers
// unknown email, wrong password, locked and inactive accounts so that callers
// cannot enumerate which case they hit. ErrInvalidOrExpiredToken does the same
// for reset and verification tokens.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalid          = errors.New("token invalid")
)

// Collaborator failures.
var (
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrAccountNotFound = errors.New("account not found")
	ErrVersionConflict = errors.New("account was modified concurrently")
	ErrStorageConflict = errors.New("storage conflict retries exhausted")
	ErrDeliveryFailure = errors.New("message delivery failed")
)
