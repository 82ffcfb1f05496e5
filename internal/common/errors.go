// Package common defines shared constants and sentinel errors used across
// client and server layers of FailVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Record validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidAddress  = errors.New("invalid address")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Admin challenge errors.
	ErrStaleChallenge = errors.New("stale challenge")
	ErrBadSignature   = errors.New("bad signature")
)
