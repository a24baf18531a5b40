package models

import "time"

// RateLimitWindowModel is one fixed-window counter row. The key combines
// the client identity and the limited scope, the window start marks which
// minute (or other window) the counter belongs to.
type RateLimitWindowModel struct {
	Key         string    `gorm:"type:varchar(128);primaryKey"`
	WindowStart time.Time `gorm:"primaryKey"`
	Count       int       `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RateLimitWindowModel) TableName() string {
	return "rate_limit_windows"
}
