package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("Ivan.Petrov", "Ivan@Example.COM", "s3cretpass")
	require.NoError(t, err)

	assert.Equal(t, "ivan.petrov", u.Username)
	assert.Equal(t, "ivan@example.com", u.Email)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash)
	assert.True(t, u.VerifyPassword("s3cretpass"))
	assert.False(t, u.VerifyPassword("wrong"))
}

func TestNewUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@b.ru", "password1"},
		{"bad username chars", "ivan petrov", "a@b.ru", "password1"},
		{"empty email", "ivan", "", "password1"},
		{"malformed email", "ivan", "not-an-email", "password1"},
		{"short password", "ivan", "a@b.ru", "1234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.username, tt.email, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestSetPassword(t *testing.T) {
	u, err := NewUser("ivan", "a@b.ru", "oldpassword")
	require.NoError(t, err)

	require.NoError(t, u.SetPassword("newpassword"))
	assert.True(t, u.VerifyPassword("newpassword"))
	assert.False(t, u.VerifyPassword("oldpassword"))

	assert.Error(t, u.SetPassword("short"))
}

func TestRecordLoginAndDeactivate(t *testing.T) {
	u, err := NewUser("ivan", "a@b.ru", "password1")
	require.NoError(t, err)

	at := time.Now()
	u.RecordLogin(at)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)

	u.Deactivate()
	assert.False(t, u.Active)
}
