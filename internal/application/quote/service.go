package quote

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	cartdom "github.com/storefront/backend/internal/domain/cart"
	quotedom "github.com/storefront/backend/internal/domain/quote"
	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartLoader reads the stored cart of a user.
type CartLoader interface {
	Load(ctx context.Context, userID uuid.UUID) (*cartdom.Cart, error)
}

// Service builds priced quote snapshots out of carts and manages their
// lifecycle. Quotes are only available to authenticated users.
type Service struct {
	quotes  quotedom.Repository
	carts   CartLoader
	engine  searchdom.Engine
	dynamic catalog.DynamicDataProvider
	logger  *zap.Logger
}

// NewService creates a new quote Service
func NewService(quotes quotedom.Repository, carts CartLoader, engine searchdom.Engine, dynamic catalog.DynamicDataProvider, logger *zap.Logger) *Service {
	return &Service{
		quotes:  quotes,
		carts:   carts,
		engine:  engine,
		dynamic: dynamic,
		logger:  logger.Named("quote-service"),
	}
}

// CreateFromCart snapshots the user's cart into a draft quote. Prices are
// resolved for the given city at this moment and frozen; the cart itself is
// left untouched so the user can keep editing it.
func (s *Service) CreateFromCart(ctx context.Context, userID uuid.UUID, cityID int64, comment string) (*quotedom.Quote, error) {
	c, err := s.carts.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	items := c.Sorted()
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_QUOTE", "Cart is empty")
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.engine.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	dynamic, err := s.resolvePrices(ctx, ids, cityID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prices: %w", err)
	}

	lines := make([]quotedom.Line, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			// the product disappeared from the index since it was added
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
				fmt.Sprintf("Product %d is no longer available", item.ProductID))
		}
		unitPrice := decimal.Zero
		if dd, ok := dynamic[item.ProductID]; ok && dd.Price != nil {
			unitPrice = dd.Price.Final
		}
		lines = append(lines, quotedom.Line{
			ProductID: item.ProductID,
			Name:      p.Name,
			SKU:       p.SKU,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
	}

	q, err := quotedom.New(userID, cityID, lines)
	if err != nil {
		return nil, err
	}
	q.Comment = comment

	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("quote_id", q.ID.String()),
		zap.String("number", q.Number),
		zap.Int("positions", len(q.Lines)),
	)
	return q, nil
}

// resolvePrices fetches dynamic data in provider-sized batches. Unlike the
// search path there is no defaulting here: a quote must not freeze a zero
// price just because the price lookup failed.
func (s *Service) resolvePrices(ctx context.Context, ids []int64, cityID int64, userID uuid.UUID) (map[int64]catalog.DynamicData, error) {
	resolved := make(map[int64]catalog.DynamicData, len(ids))
	for start := 0; start < len(ids); start += catalog.MaxDynamicBatch {
		end := start + catalog.MaxDynamicBatch
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := s.dynamic.Resolve(ctx, ids[start:end], cityID, userID.String())
		if err != nil {
			return nil, err
		}
		for id, dd := range batch {
			resolved[id] = dd
		}
	}
	return resolved, nil
}

// Get loads a quote owned by the user.
func (s *Service) Get(ctx context.Context, userID, quoteID uuid.UUID) (*quotedom.Quote, error) {
	q, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q.UserID != userID {
		// do not leak whether the quote exists
		return nil, shared.ErrNotFound
	}
	return q, nil
}

// List returns the user's quotes, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*quotedom.Quote, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.quotes.FindByUser(ctx, userID, page, limit)
}

// Submit moves the user's draft quote to submitted.
func (s *Service) Submit(ctx context.Context, userID, quoteID uuid.UUID) (*quotedom.Quote, error) {
	return s.transition(ctx, userID, quoteID, (*quotedom.Quote).Submit)
}

// Cancel cancels the user's quote.
func (s *Service) Cancel(ctx context.Context, userID, quoteID uuid.UUID) (*quotedom.Quote, error) {
	return s.transition(ctx, userID, quoteID, (*quotedom.Quote).Cancel)
}

func (s *Service) transition(ctx context.Context, userID, quoteID uuid.UUID, fn func(*quotedom.Quote) error) (*quotedom.Quote, error) {
	q, err := s.Get(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := fn(q); err != nil {
		return nil, err
	}
	if err := s.quotes.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}
