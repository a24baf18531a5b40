package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/quote"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormQuoteRepository implements quote.Repository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// Create persists a new quote with its lines in one transaction
func (r *GormQuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	var model models.QuoteModel
	model.FromDomain(q)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
}

// Update persists status changes of an existing quote. Lines are immutable
// after creation and are not touched.
func (r *GormQuoteRepository) Update(ctx context.Context, q *quote.Quote) error {
	result := r.db.WithContext(ctx).Model(&models.QuoteModel{}).
		Where("id = ?", q.ID).
		Updates(map[string]any{
			"status":     string(q.Status),
			"comment":    q.Comment,
			"updated_at": q.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID loads a quote with its lines
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	var model models.QuoteModel
	if err := r.db.WithContext(ctx).Preload("Lines").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists quotes of a user, newest first
func (r *GormQuoteRepository) FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*quote.Quote, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.QuoteModel{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.QuoteModel
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	quotes := make([]*quote.Quote, 0, len(rows))
	for i := range rows {
		quotes = append(quotes, rows[i].ToDomain())
	}
	return quotes, total, nil
}
