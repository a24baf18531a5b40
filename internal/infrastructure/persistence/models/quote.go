package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/quote"
)

// QuoteModel is the persistence model for the Quote aggregate root.
type QuoteModel struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Number    string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	CityID    int64            `gorm:"not null"`
	Status    string           `gorm:"type:varchar(20);not null"`
	Total     decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Comment   string           `gorm:"type:text"`
	Lines     []QuoteLineModel `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"not null;index"`
	UpdatedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// QuoteLineModel is one persisted quote position.
type QuoteLineModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	QuoteID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID int64           `gorm:"not null"`
	Name      string          `gorm:"type:varchar(500);not null"`
	SKU       string          `gorm:"type:varchar(100)"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

// TableName returns the table name for GORM
func (QuoteLineModel) TableName() string {
	return "quote_lines"
}

// ToDomain converts the persistence model to a domain Quote.
func (m *QuoteModel) ToDomain() *quote.Quote {
	lines := make([]quote.Line, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, quote.Line{
			ProductID:   l.ProductID,
			Name:        l.Name,
			SKU:         l.SKU,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
			PriceFrozen: true,
		})
	}
	return &quote.Quote{
		ID:        m.ID,
		Number:    m.Number,
		UserID:    m.UserID,
		CityID:    m.CityID,
		Status:    quote.Status(m.Status),
		Lines:     lines,
		Total:     m.Total,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Quote.
func (m *QuoteModel) FromDomain(q *quote.Quote) {
	m.ID = q.ID
	m.Number = q.Number
	m.UserID = q.UserID
	m.CityID = q.CityID
	m.Status = string(q.Status)
	m.Total = q.Total
	m.Comment = q.Comment
	m.CreatedAt = q.CreatedAt
	m.UpdatedAt = q.UpdatedAt
	m.Lines = make([]QuoteLineModel, 0, len(q.Lines))
	for _, l := range q.Lines {
		m.Lines = append(m.Lines, QuoteLineModel{
			QuoteID:   q.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
}
