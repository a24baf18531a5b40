package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

func setupRateLimitStore(t *testing.T) *GormRateLimitStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RateLimitWindowModel{}))
	return NewGormRateLimitStore(db)
}

func TestRateLimitStore_IncrementCountsWithinWindow(t *testing.T) {
	store := setupRateLimitStore(t)
	now := time.Date(2025, 3, 10, 12, 30, 15, 0, time.UTC)
	store.nowFn = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, resetAt, err := store.Increment(ctx, "search:10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.Equal(t, time.Date(2025, 3, 10, 12, 31, 0, 0, time.UTC), resetAt)
	}
}

func TestRateLimitStore_WindowRollover(t *testing.T) {
	store := setupRateLimitStore(t)
	now := time.Date(2025, 3, 10, 12, 30, 59, 0, time.UTC)
	store.nowFn = func() time.Time { return now }
	ctx := context.Background()

	count, _, err := store.Increment(ctx, "search:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	now = now.Add(2 * time.Second) // crosses the minute boundary
	count, _, err = store.Increment(ctx, "search:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	store := setupRateLimitStore(t)
	ctx := context.Background()

	count, _, err := store.Increment(ctx, "search:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, _, err = store.Increment(ctx, "search:10.0.0.2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRateLimitStore_Cleanup(t *testing.T) {
	store := setupRateLimitStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.nowFn = func() time.Time { return now }
	ctx := context.Background()

	_, _, err := store.Increment(ctx, "search:10.0.0.1", time.Minute)
	require.NoError(t, err)

	store.nowFn = func() time.Time { return now.Add(2 * time.Hour) }
	require.NoError(t, store.Cleanup(ctx, time.Hour))

	// the old window is gone, the counter starts over
	store.nowFn = func() time.Time { return now }
	count, _, err := store.Increment(ctx, "search:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
