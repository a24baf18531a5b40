package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/cart"
)

// Session is the server-side state of one visitor. Guests carry their cart
// here; after login UserID is set and the cart moves to the database.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	CityID    int64      `json:"city_id,omitempty"`
	Cart      *cart.Cart `json:"cart"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewSession creates an anonymous session with an empty cart.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		Cart:      cart.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAuthenticated reports whether the session belongs to a logged-in user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// Authenticate binds the session to a user.
func (s *Session) Authenticate(userID string) {
	s.UserID = userID
	s.UpdatedAt = time.Now()
}

// Regenerate issues a fresh session ID and returns the old one so the caller
// can drop the stored copy. Called on privilege changes: a cookie fixed on
// the visitor before login must not name an authenticated session.
func (s *Session) Regenerate() uuid.UUID {
	old := s.ID
	s.ID = uuid.New()
	s.UpdatedAt = time.Now()
	return old
}

// ClearUser detaches the user, keeping the session alive as a guest one.
func (s *Session) ClearUser() {
	s.UserID = ""
	s.UpdatedAt = time.Now()
}
