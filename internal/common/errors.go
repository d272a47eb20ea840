// Package common defines shared sentinel errors used across the client and
// server layers of PolicyKeeper. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Credential store errors.
	ErrDuplicateUsername = errors.New("username already exists")

	// Persistence errors. ErrStoreUnavailable is returned while the
	// persistence subsystem is disabled or unreachable; ErrConflict signals
	// an identifier collision on insert (safe to retry, no id was consumed).
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrConflict         = errors.New("record id conflict")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
