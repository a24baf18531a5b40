package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront/backend/internal/domain/cart"
)

const keyPrefix = "session:"

// ErrSessionNotFound is returned when no session exists for an ID, either
// because it expired or because the ID was never issued.
var ErrSessionNotFound = errors.New("session not found")

// RedisStore keeps sessions in Redis with a sliding TTL: every save renews
// the expiration, so active visitors never lose their cart.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads a session by ID.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Cart == nil {
		sess.Cart = cart.New()
	}
	return &sess, nil
}

// Save persists the session and renews its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID.String(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, keyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
