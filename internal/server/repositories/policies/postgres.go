package policies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/dbx"
	"github.com/insuredesk/policykeeper/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// PostgresRepository implements policy record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). Callers that need allocation and insert to be one
// atomic unit must bind it to a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NextID advances the single-row counter and returns the new value. The row
// update takes a lock held until the surrounding transaction ends, which
// serializes concurrent allocations; rolling the transaction back returns
// the id to the pool, keeping the sequence gap-free.
func (r *PostgresRepository) NextID(ctx context.Context) (int64, error) {
	query := `
		UPDATE policy_id_counter SET last_id = last_id + 1
		WHERE id = 1
		RETURNING last_id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.PolicyRecord) error {
	query := `
		INSERT INTO customer_details (id, name, email, phone, address, policy_type, policy_number, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Email, rec.Phone, rec.Address,
		string(rec.PolicyType), rec.PolicyNumber, rec.StartDate, rec.EndDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.PolicyRecord, error) {
	query := `
		SELECT id, name, email, phone, address, policy_type, policy_number, start_date, end_date
		FROM customer_details
		WHERE id = $1
	`

	rec := &models.PolicyRecord{}
	var policyType string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.Address,
		&policyType, &rec.PolicyNumber, &rec.StartDate, &rec.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.PolicyType = models.PolicyType(policyType)

	return rec, nil
}
