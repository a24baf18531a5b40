package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cartdom "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/session"
)

// Repository persists user carts. Guest carts live in the session only.
type Repository interface {
	Load(ctx context.Context, userID uuid.UUID) (*cartdom.Cart, error)
	Save(ctx context.Context, userID uuid.UUID, c *cartdom.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// SessionStore persists session state after cart changes.
type SessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
}

// Service manages the cart of the current visitor. Guests keep their cart
// in the session; logged-in users keep it in the database so it follows
// them across devices.
type Service struct {
	repo     Repository
	sessions SessionStore
	logger   *zap.Logger
}

// NewService creates a new cart Service
func NewService(repo Repository, sessions SessionStore, logger *zap.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, logger: logger.Named("cart-service")}
}

// Get returns the current cart.
func (s *Service) Get(ctx context.Context, sess *session.Session) (*cartdom.Cart, error) {
	if !sess.IsAuthenticated() {
		return sess.Cart, nil
	}
	userID, err := s.userID(sess)
	if err != nil {
		return nil, err
	}
	return s.repo.Load(ctx, userID)
}

// Add increases the quantity of a product in the cart.
func (s *Service) Add(ctx context.Context, sess *session.Session, productID int64, qty int) (*cartdom.Cart, error) {
	return s.mutate(ctx, sess, func(c *cartdom.Cart) error {
		return c.Add(productID, qty)
	})
}

// Update sets the quantity of a product; zero or less removes it.
func (s *Service) Update(ctx context.Context, sess *session.Session, productID int64, qty int) (*cartdom.Cart, error) {
	return s.mutate(ctx, sess, func(c *cartdom.Cart) error {
		return c.Update(productID, qty)
	})
}

// Remove drops a product from the cart.
func (s *Service) Remove(ctx context.Context, sess *session.Session, productID int64) (*cartdom.Cart, error) {
	return s.mutate(ctx, sess, func(c *cartdom.Cart) error {
		c.Remove(productID)
		return nil
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sess *session.Session) (*cartdom.Cart, error) {
	return s.mutate(ctx, sess, func(c *cartdom.Cart) error {
		c.Clear()
		return nil
	})
}

// MergeOnLogin folds the guest cart of the session into the user's stored
// cart. Overlapping products sum their quantities. The session cart is then
// emptied so a repeated call cannot double the quantities.
func (s *Service) MergeOnLogin(ctx context.Context, sess *session.Session, userID uuid.UUID) error {
	if sess.Cart == nil || sess.Cart.Len() == 0 {
		return nil
	}

	stored, err := s.repo.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user cart: %w", err)
	}
	stored.Merge(sess.Cart)
	if err := s.repo.Save(ctx, userID, stored); err != nil {
		return fmt.Errorf("failed to save merged cart: %w", err)
	}

	sess.Cart.Clear()
	if err := s.sessions.Save(ctx, sess); err != nil {
		// the merge itself succeeded; a stale guest cart would double
		// quantities on the next login, so surface the failure
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}

	s.logger.Info("guest cart merged",
		zap.String("user_id", userID.String()),
		zap.Int("positions", stored.Len()),
	)
	return nil
}

func (s *Service) mutate(ctx context.Context, sess *session.Session, fn func(*cartdom.Cart) error) (*cartdom.Cart, error) {
	if !sess.IsAuthenticated() {
		if err := fn(sess.Cart); err != nil {
			return nil, err
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save session cart: %w", err)
		}
		return sess.Cart, nil
	}

	userID, err := s.userID(sess)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) userID(sess *session.Session) (uuid.UUID, error) {
	userID, err := uuid.Parse(sess.UserID)
	if err != nil {
		return uuid.Nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "session has no valid user")
	}
	return userID, nil
}
