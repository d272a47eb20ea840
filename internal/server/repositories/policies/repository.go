// Package policies provides the record store repositories for customer
// policy submissions, including identifier allocation.
package policies

import (
	"context"

	"github.com/insuredesk/policykeeper/internal/server/models"
)

// Repository persists policy records keyed by a system-assigned id.
//
// NextID and Insert are intended to run inside one logical unit (a database
// transaction for the PostgreSQL implementation, an internal lock for the
// in-memory one), so two concurrent savers can never observe the same
// "next" id and a failed insert never consumes one.
type Repository interface {
	// NextID allocates the identifier for the next record, starting at 1
	// when the store is empty.
	NextID(ctx context.Context) (int64, error)

	// Insert writes a record whose ID has already been allocated. An id
	// collision yields common.ErrConflict.
	Insert(ctx context.Context, rec *models.PolicyRecord) error

	// GetByID returns the stored record, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.PolicyRecord, error)
}
