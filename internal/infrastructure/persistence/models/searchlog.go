package models

import "time"

// SearchLogModel records one executed search for later analysis. Written
// asynchronously; losing records under pressure is acceptable.
type SearchLogModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Query      string    `gorm:"type:varchar(500);not null;index"`
	Intent     string    `gorm:"type:varchar(20);not null"`
	CityID     int64     `gorm:"not null"`
	UserID     string    `gorm:"type:varchar(36)"`
	SessionID  string    `gorm:"type:varchar(36)"`
	Total      int64     `gorm:"not null"`
	Page       int       `gorm:"not null"`
	TookMillis int64     `gorm:"not null"`
	CacheHit   bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SearchLogModel) TableName() string {
	return "search_logs"
}
