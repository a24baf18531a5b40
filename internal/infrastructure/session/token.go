package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token has expired")
)

// tokenClaims wraps the session ID in a signed token so the cookie value
// cannot be forged or enumerated.
type tokenClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenCodec signs and verifies session cookie tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenCodec creates a new TokenCodec
func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Encode produces a signed token carrying the session ID.
func (c *TokenCodec) Encode(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		SessionID: sessionID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies a token and extracts the session ID.
func (c *TokenCodec) Decode(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
