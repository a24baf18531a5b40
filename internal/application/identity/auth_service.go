package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	identitydom "github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/session"
)

// ErrInvalidCredentials is returned for any login failure: unknown login,
// wrong password or a deactivated account. The caller cannot tell which.
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid login or password")

// CartMerger folds the guest cart into the user's stored cart on login.
type CartMerger interface {
	MergeOnLogin(ctx context.Context, sess *session.Session, userID uuid.UUID) error
}

// SessionStore persists session state.
type SessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthService handles registration, login and logout.
type AuthService struct {
	users    identitydom.UserRepository
	sessions SessionStore
	carts    CartMerger
	logger   *zap.Logger
	nowFn    func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users identitydom.UserRepository, sessions SessionStore, carts CartMerger, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		carts:    carts,
		logger:   logger.Named("auth-service"),
		nowFn:    time.Now,
	}
}

// Register creates a new customer account.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*identitydom.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already taken")
	}
	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already registered")
	}

	user, err := identitydom.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies the credentials, binds the user to the session and merges
// the guest cart into the user's stored cart.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, login, password string) (*identitydom.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// rotate the session ID before it gains privileges, so a cookie planted
	// on the visitor pre-login keeps pointing at a guest session
	oldID := sess.Regenerate()

	if err := s.carts.MergeOnLogin(ctx, sess, user.ID); err != nil {
		return nil, err
	}

	sess.Authenticate(user.ID.String())
	if user.CityID > 0 {
		sess.CityID = user.CityID
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, oldID); err != nil {
		// the orphaned guest session expires by TTL on its own
		s.logger.Warn("failed to drop pre-login session",
			zap.String("session_id", oldID.String()),
			zap.Error(err),
		)
	}

	user.RecordLogin(s.nowFn())
	if err := s.users.Update(ctx, user); err != nil {
		// login already succeeded; the stale timestamp is not worth failing it
		s.logger.Warn("failed to record login time",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Logout unbinds the user from the session. The session itself survives so
// the visitor keeps their city and an empty guest cart.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if !sess.IsAuthenticated() {
		return nil
	}
	sess.ClearUser()
	return s.sessions.Save(ctx, sess)
}

// CurrentUser loads the account bound to the session.
func (s *AuthService) CurrentUser(ctx context.Context, sess *session.Session) (*identitydom.User, error) {
	if !sess.IsAuthenticated() {
		return nil, shared.ErrUnauthorized
	}
	userID, err := uuid.Parse(sess.UserID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	return s.users.FindByID(ctx, userID)
}
