package quote

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a quote.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusCancelled Status = "cancelled"
)

// Line is one priced position of a quote. Unit price is frozen at quote
// creation; later price changes do not affect existing quotes.
type Line struct {
	ProductID   int64
	Name        string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	PriceFrozen bool
}

// Quote is a priced snapshot of a cart requested by a customer.
type Quote struct {
	ID        uuid.UUID
	Number    string
	UserID    uuid.UUID
	CityID    int64
	Status    Status
	Lines     []Line
	Total     decimal.Decimal
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds a draft quote from priced lines. The line totals and grand
// total are recomputed here so callers cannot pass inconsistent sums.
func New(userID uuid.UUID, cityID int64, lines []Line) (*Quote, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "user id is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_QUOTE", "Quote must contain at least one position")
	}

	total := decimal.Zero
	for i := range lines {
		if lines[i].ProductID <= 0 {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "product id must be positive")
		}
		if lines[i].Quantity <= 0 {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "quantity must be positive")
		}
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		lines[i].PriceFrozen = true
		total = total.Add(lines[i].LineTotal)
	}

	now := time.Now()
	id := uuid.New()
	return &Quote{
		ID:        id,
		Number:    generateNumber(now, id),
		UserID:    userID,
		CityID:    cityID,
		Status:    StatusDraft,
		Lines:     lines,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Submit moves a draft quote to submitted.
func (q *Quote) Submit() error {
	if q.Status != StatusDraft {
		return shared.NewDomainError("INVALID_QUOTE_STATUS", fmt.Sprintf("Cannot submit quote in status %s", q.Status))
	}
	q.Status = StatusSubmitted
	q.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels a quote that has not been cancelled yet.
func (q *Quote) Cancel() error {
	if q.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_QUOTE_STATUS", "Quote is already cancelled")
	}
	q.Status = StatusCancelled
	q.UpdatedAt = time.Now()
	return nil
}

// generateNumber derives a human-readable quote number: date plus a short
// stable suffix from the quote ID.
func generateNumber(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("Q-%s-%08X", at.Format("20060102"), id.ID())
}
