package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/application/searchlog"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormSearchLogRepository persists search log entries in batches.
type GormSearchLogRepository struct {
	db *gorm.DB
}

// NewGormSearchLogRepository creates a new GormSearchLogRepository
func NewGormSearchLogRepository(db *gorm.DB) *GormSearchLogRepository {
	return &GormSearchLogRepository{db: db}
}

// SaveBatch inserts a batch of search log entries in one statement.
func (r *GormSearchLogRepository) SaveBatch(ctx context.Context, entries []searchlog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.SearchLogModel, 0, len(entries))
	for _, e := range entries {
		createdAt := e.At
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		rows = append(rows, models.SearchLogModel{
			Query:      e.Query,
			Intent:     e.Intent,
			CityID:     e.CityID,
			UserID:     e.UserID,
			SessionID:  e.SessionID,
			Total:      e.Total,
			Page:       e.Page,
			TookMillis: e.TookMillis,
			CacheHit:   e.CacheHit,
			CreatedAt:  createdAt,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
