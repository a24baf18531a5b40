package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/quote"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

func setupQuoteTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.QuoteModel{}, &models.QuoteLineModel{}))
	return db
}

func newTestQuote(t *testing.T, userID uuid.UUID) *quote.Quote {
	q, err := quote.New(userID, 1, []quote.Line{
		{ProductID: 5, Name: "Автомат ВА47-29", SKU: "VA47-29", Quantity: 3, UnitPrice: decimal.RequireFromString("125.50")},
		{ProductID: 7, Name: "Розетка", Quantity: 2, UnitPrice: decimal.RequireFromString("89.90")},
	})
	require.NoError(t, err)
	return q
}

func TestQuoteRepository_CreateAndFind(t *testing.T) {
	repo := NewGormQuoteRepository(setupQuoteTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	q := newTestQuote(t, userID)
	require.NoError(t, repo.Create(ctx, q))

	found, err := repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Number, found.Number)
	assert.Equal(t, quote.StatusDraft, found.Status)
	require.Len(t, found.Lines, 2)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("556.30")))
}

func TestQuoteRepository_FindMissing(t *testing.T) {
	repo := NewGormQuoteRepository(setupQuoteTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestQuoteRepository_UpdateStatus(t *testing.T) {
	repo := NewGormQuoteRepository(setupQuoteTestDB(t))
	ctx := context.Background()

	q := newTestQuote(t, uuid.New())
	require.NoError(t, repo.Create(ctx, q))

	require.NoError(t, q.Submit())
	require.NoError(t, repo.Update(ctx, q))

	found, err := repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusSubmitted, found.Status)
}

func TestQuoteRepository_FindByUserPaginates(t *testing.T) {
	repo := NewGormQuoteRepository(setupQuoteTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newTestQuote(t, userID)))
	}
	require.NoError(t, repo.Create(ctx, newTestQuote(t, uuid.New())))

	quotes, total, err := repo.FindByUser(ctx, userID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, quotes, 2)

	quotes, total, err = repo.FindByUser(ctx, userID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, quotes, 1)
}
