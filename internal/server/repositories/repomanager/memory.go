package repomanager

import (
	"context"
	"database/sql"

	"github.com/insuredesk/policykeeper/internal/dbx"
	"github.com/insuredesk/policykeeper/internal/server/repositories/policies"
)

// InMemoryRepositoryManager vends the in-process record store. There is no
// database handle and migrations are a no-op.
type InMemoryRepositoryManager struct {
	policies *policies.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{policies: policies.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

// Policies ignores the DBTX argument; the memory repository serializes
// allocation and insert internally.
func (m *InMemoryRepositoryManager) Policies(db dbx.DBTX) policies.Repository {
	return m.policies
}
