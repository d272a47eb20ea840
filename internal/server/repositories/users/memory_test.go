package users

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/server/models"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Username: "alice", FullName: "Alice A", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Alice A", got.FullName)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_DuplicateUsernameLeavesStoreUnchanged(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "alice", Email: "second@example.com"})
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryRepository_Exists(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Create(ctx, &models.User{Username: "alice"})
	require.NoError(t, err)

	ok, err = repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryRepository_ConcurrentSameUsername_ExactlyOneWins(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, &models.User{Username: "contended"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, common.ErrDuplicateUsername)
		}
	}
	assert.Equal(t, 1, wins)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryRepository_ListPreservesRegistrationOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := repo.Create(ctx, &models.User{Username: name})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "carol", all[0].Username)
	assert.Equal(t, "alice", all[1].Username)
	assert.Equal(t, "bob", all[2].Username)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice", FullName: "Alice"})
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	got.FullName = "Mallory"

	again, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.FullName)
}
