// Package users holds the credential store: the registry of known
// username/password-hash/profile tuples consulted by the auth service.
package users

import (
	"context"

	"github.com/insuredesk/policykeeper/internal/server/models"
)

// Repository is the credential store contract. Implementations must be safe
// for concurrent callers; Create must resolve racing registrations of the
// same username deterministically, with exactly one winner.
type Repository interface {
	// Create appends a new credential. A username that is already present
	// yields common.ErrDuplicateUsername and leaves the store unchanged.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the credential for username, or common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Exists reports whether username is registered.
	Exists(ctx context.Context, username string) (bool, error)

	// Count returns the number of stored credentials.
	Count(ctx context.Context) (int, error)
}
