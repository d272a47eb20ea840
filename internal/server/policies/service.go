// Package policies implements the record service: transactional persistence
// of validated policy submissions with safe identifier allocation.
package policies

import (
	"context"
	"errors"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/dbx"
	"github.com/insuredesk/policykeeper/internal/server/models"
	policiesrepo "github.com/insuredesk/policykeeper/internal/server/repositories/policies"
	"github.com/insuredesk/policykeeper/internal/server/repositories/repomanager"
)

// SaveResult is delivered on the channel returned by SaveAsync.
type SaveResult struct {
	ID  int64
	Err error
}

// Service persists policy records. A nil repository manager means the
// persistence subsystem is disabled (store unreachable or driver missing at
// startup); operations then consistently report common.ErrStoreUnavailable
// instead of crashing the process.
//
// Save expects an already-validated record; validation is the caller's
// contract and is not repeated here.
type Service struct {
	rm repomanager.RepositoryManager
}

// NewService constructs the record service. rm may be nil to start the
// service in the disabled state.
func NewService(rm repomanager.RepositoryManager) *Service {
	return &Service{rm: rm}
}

// Available reports whether the persistence subsystem is usable.
func (s *Service) Available() bool {
	return s.rm != nil
}

// Save allocates the next id and writes the full row as one logical unit,
// returning the assigned id. On any failure no partial record is visible:
// either the id is consumed and the row exists, or neither.
//
// An id collision (possible only when an external writer bypasses the
// counter) is retried once; the retry is safe because the failed attempt
// consumed no id.
func (s *Service) Save(ctx context.Context, rec models.PolicyRecord) (int64, error) {
	if s.rm == nil {
		return 0, common.ErrStoreUnavailable
	}

	id, err := s.saveOnce(ctx, rec)
	if errors.Is(err, common.ErrConflict) {
		id, err = s.saveOnce(ctx, rec)
	}
	return id, err
}

func (s *Service) saveOnce(ctx context.Context, rec models.PolicyRecord) (int64, error) {
	db := s.rm.Conn()

	// Backends without a database handle serialize internally.
	if db == nil {
		return allocateAndInsert(ctx, s.rm.Policies(nil), rec)
	}

	var id int64
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		id, txErr = allocateAndInsert(ctx, s.rm.Policies(tx), rec)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func allocateAndInsert(ctx context.Context, repo policiesrepo.Repository, rec models.PolicyRecord) (int64, error) {
	id, err := repo.NextID(ctx)
	if err != nil {
		return 0, err
	}

	rec.ID = id
	if err := repo.Insert(ctx, &rec); err != nil {
		return 0, err
	}
	return id, nil
}

// SaveAsync dispatches Save on its own goroutine and delivers the outcome on
// the returned channel, so a caller running a cooperative event loop is never
// blocked on persistence I/O. The channel is buffered; the result can be
// collected at any time.
func (s *Service) SaveAsync(ctx context.Context, rec models.PolicyRecord) <-chan SaveResult {
	out := make(chan SaveResult, 1)
	go func() {
		id, err := s.Save(ctx, rec)
		out <- SaveResult{ID: id, Err: err}
	}()
	return out
}

// Get reads a stored record back by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.PolicyRecord, error) {
	if s.rm == nil {
		return nil, common.ErrStoreUnavailable
	}
	return s.rm.Policies(s.conn()).GetByID(ctx, id)
}

func (s *Service) conn() dbx.DBTX {
	if db := s.rm.Conn(); db != nil {
		return db
	}
	return nil
}
