package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormCartRepository stores user carts, one row per user. Guest carts never
// reach this repository, they live in the session store only.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Load returns the user's cart, or an empty cart if none is stored.
func (r *GormCartRepository) Load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var model models.CartModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.New(), nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save upserts the user's cart row.
func (r *GormCartRepository) Save(ctx context.Context, userID uuid.UUID, c *cart.Cart) error {
	var model models.CartModel
	if err := model.FromDomain(userID, c); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&model).Error
}

// Delete removes the user's cart row. Deleting an absent cart is a no-op.
func (r *GormCartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartModel{}, "user_id = ?", userID).Error
}
