package policies

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/server/models"
	"github.com/insuredesk/policykeeper/internal/server/repositories/repomanager"
)

func validRecord() models.PolicyRecord {
	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	return models.PolicyRecord{
		Name:         "John Doe",
		Email:        "j@d.com",
		Phone:        "1234567890",
		Address:      "12 Main St",
		PolicyType:   models.PolicyTypeLife,
		PolicyNumber: "AB123456",
		StartDate:    day,
		EndDate:      day.AddDate(0, 0, 30),
	}
}

func TestSave_RoundTripOnMemoryStore(t *testing.T) {
	s := NewService(repomanager.NewInMemoryRepositoryManager())
	ctx := context.Background()

	rec := validRecord()
	id, err := s.Save(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)

	want := rec
	want.ID = id
	assert.Equal(t, &want, got)
}

func TestSave_ConcurrentSavesNeverCollide(t *testing.T) {
	s := NewService(repomanager.NewInMemoryRepositoryManager())
	ctx := context.Background()

	const callers = 8
	const perCaller = 25

	var wg sync.WaitGroup
	ids := make(chan int64, callers*perCaller)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perCaller; j++ {
				id, err := s.Save(ctx, validRecord())
				assert.NoError(t, err)
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	got := make([]int64, 0, callers*perCaller)
	for id := range ids {
		got = append(got, id)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	require.Len(t, got, callers*perCaller)
	for i, id := range got {
		require.Equal(t, int64(i+1), id)
	}
}

func TestSave_DisabledStoreReportsUnavailable(t *testing.T) {
	s := NewService(nil)

	_, err := s.Save(context.Background(), validRecord())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	assert.False(t, s.Available())
}

func TestSaveAsync_DeliversResult(t *testing.T) {
	s := NewService(repomanager.NewInMemoryRepositoryManager())

	res := <-s.SaveAsync(context.Background(), validRecord())
	require.NoError(t, res.Err)
	assert.Equal(t, int64(1), res.ID)
}

func TestSaveAsync_DisabledStoreDeliversError(t *testing.T) {
	s := NewService(nil)

	res := <-s.SaveAsync(context.Background(), validRecord())
	assert.ErrorIs(t, res.Err, common.ErrStoreUnavailable)
}

// --- PostgreSQL transaction behavior over sqlmock ---

func newPostgresService(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewService(repomanager.NewPostgresRepositoryManager(db)), mock, db
}

func expectAllocation(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(`UPDATE\s+policy_id_counter`).
		WillReturnRows(sqlmock.NewRows([]string{"last_id"}).AddRow(id))
}

func TestSave_Postgres_AllocatesAndInsertsInOneTransaction(t *testing.T) {
	s, mock, db := newPostgresService(t)
	defer db.Close()

	mock.ExpectBegin()
	expectAllocation(mock, 4)
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+customer_details`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.Save(context.Background(), validRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Postgres_RollsBackWhenInsertFails(t *testing.T) {
	s, mock, db := newPostgresService(t)
	defer db.Close()

	mock.ExpectBegin()
	expectAllocation(mock, 4)
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+customer_details`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.Save(context.Background(), validRecord())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Postgres_RetriesOnceOnIDConflict(t *testing.T) {
	s, mock, db := newPostgresService(t)
	defer db.Close()

	// first attempt: insert hits a unique violation, transaction rolls back
	mock.ExpectBegin()
	expectAllocation(mock, 4)
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+customer_details`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	// retry succeeds with a fresh id
	mock.ExpectBegin()
	expectAllocation(mock, 5)
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+customer_details`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.Save(context.Background(), validRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
