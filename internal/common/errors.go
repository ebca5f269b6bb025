// Package common defines shared constants and sentinel errors used across
// client and server layers of shopkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Error kinds surfaced by services. Transports map them to status codes.
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication failed")
	ErrConflict       = errors.New("already exists")
	ErrConfiguration  = errors.New("configuration error")
	ErrDependency     = errors.New("dependency unavailable")
	ErrForbidden      = errors.New("forbidden")

	// Catalog errors.
	ErrInsufficientStock = errors.New("insufficient stock")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
