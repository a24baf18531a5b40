package quote

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for quote persistence
type Repository interface {
	// Create persists a new quote with its lines
	Create(ctx context.Context, q *Quote) error

	// Update persists status changes of an existing quote
	Update(ctx context.Context, q *Quote) error

	// FindByID loads a quote with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindByUser lists quotes of a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Quote, int64, error)
}
