package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/backend/internal/domain/shared"
)

// Role represents the access level of a storefront account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User is a storefront account. Guests have no User; they are identified by
// session alone until they log in.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	CityID       int64
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates an active user with a hashed password.
func NewUser(username, email, password string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleCustomer,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash after validation.
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// RecordLogin stores the moment of a successful login.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// Deactivate blocks the account from logging in.
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be 3-64 characters of lowercase letters, digits, dot, dash or underscore")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > 254 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
