// Package common defines shared constants and sentinel errors used across
// client and server layers of docvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is bad caller input. It is always raised before any I/O.
	ErrValidation = errors.New("validation error")

	// ErrAccessDenied covers both "record does not exist" and "record belongs
	// to someone else". The two cases are never distinguished.
	ErrAccessDenied = errors.New("access denied")

	// ErrAuthentication is a failed AEAD tag check at decrypt time.
	ErrAuthentication = errors.New("wrong passphrase or corrupted file")

	// ErrMalformedContainer is a structurally invalid ciphertext container.
	ErrMalformedContainer = errors.New("malformed container")

	// Write-path races.
	ErrSlotExpired = errors.New("upload slot expired or already used")
	ErrConflict    = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
