package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/cart"
)

// CartModel persists a user's cart as a single row with a JSON payload of
// positions. One row per user; session carts of guests live in Redis only.
type CartModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain unmarshals the payload into a domain cart.
func (m *CartModel) ToDomain() (*cart.Cart, error) {
	c := cart.New()
	if len(m.Payload) == 0 {
		return c, nil
	}
	var items []cart.Item
	if err := json.Unmarshal(m.Payload, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart payload: %w", err)
	}
	for _, item := range items {
		c.Items[item.ProductID] = item
	}
	return c, nil
}

// FromDomain serializes the cart positions into the payload.
func (m *CartModel) FromDomain(userID uuid.UUID, c *cart.Cart) error {
	payload, err := json.Marshal(c.Sorted())
	if err != nil {
		return fmt.Errorf("failed to encode cart payload: %w", err)
	}
	m.UserID = userID
	m.Payload = payload
	m.UpdatedAt = time.Now()
	return nil
}
