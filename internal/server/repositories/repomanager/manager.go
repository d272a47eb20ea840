// Package repomanager vends repository implementations for a storage backend
// and exposes the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/insuredesk/policykeeper/internal/dbx"
	"github.com/insuredesk/policykeeper/internal/server/repositories/policies"
)

// RepositoryManager binds repositories to a backend. Conn returns the
// underlying database handle, or nil for backends that have none; services
// use it to decide whether a transaction can wrap repository calls.
type RepositoryManager interface {
	Conn() *sql.DB
	RunMigrations(ctx context.Context) error
	Policies(db dbx.DBTX) policies.Repository
}
