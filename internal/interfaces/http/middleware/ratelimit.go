package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RateLimitStore counts requests per key in fixed windows. The counters are
// shared between instances, so the limit holds across a multi-node deploy.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

// RateLimit limits requests per client within a fixed window. Logged-in
// clients are counted by user id, guests by IP. The scope keeps counters of
// different endpoint groups apart, so hammering search does not lock a client
// out of login.
//
// A store failure lets the request through: the limiter protects capacity,
// it must not become the outage itself.
func RateLimit(store RateLimitStore, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + clientKey(c)

		count, resetAt, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.FromGinContext(c).Warn("rate limit store unavailable",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}

		c.Next()
	}
}

// clientKey identifies the caller for rate limiting. Counting logged-in users
// by id keeps office networks behind one NAT from sharing a single counter.
func clientKey(c *gin.Context) string {
	if sess := GetSession(c); sess != nil && sess.IsAuthenticated() {
		return "user:" + sess.UserID
	}
	return c.ClientIP()
}
