package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret-key-at-least-32-chars!", "storefront", time.Hour)
	sessionID := uuid.New()

	token, err := codec.Encode(sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, decoded)
}

func TestTokenCodec_RejectsTamperedToken(t *testing.T) {
	codec := NewTokenCodec("test-secret-key-at-least-32-chars!", "storefront", time.Hour)

	token, err := codec.Encode(uuid.New())
	require.NoError(t, err)

	_, err = codec.Decode(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_RejectsWrongSecret(t *testing.T) {
	codec := NewTokenCodec("test-secret-key-at-least-32-chars!", "storefront", time.Hour)
	other := NewTokenCodec("another-secret-key-32-characters!!", "storefront", time.Hour)

	token, err := codec.Encode(uuid.New())
	require.NoError(t, err)

	_, err = other.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_RejectsExpiredToken(t *testing.T) {
	codec := NewTokenCodec("test-secret-key-at-least-32-chars!", "storefront", -time.Minute)

	token, err := codec.Encode(uuid.New())
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
