package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string    `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	DisplayName  string    `gorm:"type:varchar(200)"`
	Role         string    `gorm:"type:varchar(20);not null;default:'customer'"`
	CityID       int64     `gorm:"not null;default:0"`
	Active       bool      `gorm:"not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Role:         identity.Role(m.Role),
		CityID:       m.CityID,
		Active:       m.Active,
		LastLoginAt:  m.LastLoginAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = string(u.Role)
	m.CityID = u.CityID
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
}
