package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormRateLimitStore counts requests in fixed windows stored in the
// database, so limits hold across server instances without extra
// infrastructure. Windows are aligned to the window duration.
type GormRateLimitStore struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewGormRateLimitStore creates a new GormRateLimitStore
func NewGormRateLimitStore(db *gorm.DB) *GormRateLimitStore {
	return &GormRateLimitStore{db: db, nowFn: time.Now}
}

// Increment bumps the counter for key in the current window and returns the
// new count together with the moment the window resets.
func (s *GormRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.nowFn()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)

	row := models.RateLimitWindowModel{
		Key:         key,
		WindowStart: windowStart,
		Count:       1,
		UpdatedAt:   now,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}, {Name: "window_start"}},
			DoUpdates: clause.Assignments(map[string]any{
				"count":      gorm.Expr("rate_limit_windows.count + 1"),
				"updated_at": now,
			}),
		}).
		Create(&row).Error
	if err != nil {
		return 0, resetAt, err
	}

	var current models.RateLimitWindowModel
	if err := s.db.WithContext(ctx).
		Where("key = ? AND window_start = ?", key, windowStart).
		First(&current).Error; err != nil {
		return 0, resetAt, err
	}
	return current.Count, resetAt, nil
}

// Cleanup drops windows that ended before the cutoff. Meant to run
// periodically so the table does not grow without bound.
func (s *GormRateLimitStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := s.nowFn().Add(-olderThan)
	return s.db.WithContext(ctx).
		Where("window_start < ?", cutoff).
		Delete(&models.RateLimitWindowModel{}).Error
}
