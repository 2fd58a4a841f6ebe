// Package common defines shared constants and sentinel errors used across
// client and server layers of taskkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token, missing bearer header).
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingCredential = errors.New("missing credential")

	// Token lifecycle errors. An expired token also matches ErrInvalidToken.
	ErrTokenExpired = errors.New("token expired")
)
