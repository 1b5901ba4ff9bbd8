package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection of :memory: would be a separate database
	require.NoError(t, ConfigurePool(db, ports.DatabaseConfig{MaxOpenConns: 1, ConnMaxLifetime: time.Hour}))
	require.NoError(t, Migrate(db))

	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestSubscriptionRepository_SetAndGet(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 1, "Paris"))

	found, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.UserID)
	assert.Equal(t, "Paris", found.City)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestSubscriptionRepository_SetReplaces(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 1, "Paris"))
	require.NoError(t, repo.Set(ctx, 1, "Tokyo"))

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Tokyo", subs[0].City)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSubscriptionRepository_Set_Validation(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	assert.True(t, errors.IsValidationError(repo.Set(ctx, 0, "Paris")))
	assert.True(t, errors.IsValidationError(repo.Set(ctx, 1, "   ")))
}

func TestSubscriptionRepository_Get_NotFound(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))

	found, err := repo.Get(context.Background(), 999)

	assert.Nil(t, found)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestSubscriptionRepository_Clear(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 1, "Paris"))
	require.NoError(t, repo.Clear(ctx, 1))

	_, err := repo.Get(ctx, 1)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSubscriptionRepository_Clear_MissingIsNoop(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))

	assert.NoError(t, repo.Clear(context.Background(), 42))
}

func TestSubscriptionRepository_ListOrdered(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 2, "InvalidCity123"))
	require.NoError(t, repo.Set(ctx, 1, "London"))

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(1), subs[0].UserID)
	assert.Equal(t, "London", subs[0].City)
	assert.Equal(t, int64(2), subs[1].UserID)
}

func TestSubscriptionRepository_ListDuringConcurrentSet(t *testing.T) {
	repo := NewSubscriptionRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, 1, "Paris"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			city := "Paris"
			if i%2 == 0 {
				city = "Tokyo"
			}
			assert.NoError(t, repo.Set(ctx, 1, city))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			subs, err := repo.List(ctx)
			if assert.NoError(t, err) && assert.Len(t, subs, 1) {
				assert.Contains(t, []string{"Paris", "Tokyo"}, subs[0].City)
			}
		}
	}()
	wg.Wait()
}

func TestSubscriptionRepository_ClosedPool(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepositoryAdapter(db)
	require.NoError(t, Close(db))

	_, err := repo.List(context.Background())

	assert.True(t, errors.IsDatabaseError(err))
}
