package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceModel holds the current base and optional special price of a product.
// CityID 0 means the price applies everywhere; a row with a concrete city
// overrides the city-wide one.
type PriceModel struct {
	ProductID    int64            `gorm:"primaryKey"`
	CityID       int64            `gorm:"primaryKey;default:0"`
	Base         decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Special      *decimal.Decimal `gorm:"type:numeric(14,2)"`
	SpecialUntil *time.Time
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PriceModel) TableName() string {
	return "prices"
}
