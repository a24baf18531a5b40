package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/storefront/backend/internal/infrastructure/session"
)

type memoryStore struct {
	counts map[string]int
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: make(map[string]int)}
}

func (s *memoryStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	if s.err != nil {
		return 0, time.Time{}, s.err
	}
	s.counts[key]++
	return s.counts[key], time.Now().Add(window), nil
}

func rateLimitedRouter(store RateLimitStore, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/search", RateLimit(store, "search", limit, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	r := rateLimitedRouter(newMemoryStore(), 3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	r := rateLimitedRouter(newMemoryStore(), 2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/search", nil))
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_ScopesAreIndependent(t *testing.T) {
	store := newMemoryStore()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/search", RateLimit(store, "search", 1, time.Minute), ok)
	r.GET("/login", RateLimit(store, "auth", 1, time.Minute), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// exhausting search must not lock out auth for the same client
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_CountsAuthenticatedUsersSeparately(t *testing.T) {
	store := newMemoryStore()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sess := session.NewSession()
	sess.Authenticate("7b0ffa0e-3b9c-4b8e-9a51-6f1f6d6f0001")
	r.GET("/search",
		func(c *gin.Context) { c.Set(SessionKey, sess); c.Next() },
		RateLimit(store, "search", 1, time.Minute),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_, byUser := store.counts["search:user:"+sess.UserID]
	assert.True(t, byUser, "logged-in clients are counted by user id, not IP")
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	r := rateLimitedRouter(&memoryStore{err: errors.New("database unavailable")}, 1)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
