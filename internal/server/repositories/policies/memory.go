package policies

import (
	"context"
	"sync"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/server/models"
)

// MemoryRepository keeps records in an in-process map with a mutex-protected
// counter for id allocation. Used for the "memory" DSN and in tests.
type MemoryRepository struct {
	mu     sync.Mutex
	lastID int64
	recs   map[int64]models.PolicyRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{recs: make(map[int64]models.PolicyRecord)}
}

func (r *MemoryRepository) NextID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	return r.lastID, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, rec *models.PolicyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recs[rec.ID]; ok {
		return common.ErrConflict
	}
	r.recs[rec.ID] = *rec
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.PolicyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := rec
	return &out, nil
}
