package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/session"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SessionKey is the gin context key for the current session
const SessionKey = "session"

// Session resolves the visitor's session from the signed cookie, creating a
// fresh guest session when the cookie is missing, forged or expired. Handlers
// can always rely on a session being present in the context.
func Session(store *session.RedisStore, codec *session.TokenCodec, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := resolve(c, store, codec, cfg.CookieName)
		if sess == nil {
			sess = session.NewSession()
			if err := store.Save(c.Request.Context(), sess); err != nil {
				logger.FromGinContext(c).Error("failed to create session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.ErrCodeInternal, "Failed to create session"))
				return
			}
			if err := SetSessionCookie(c, codec, cfg, sess); err != nil {
				logger.FromGinContext(c).Error("failed to sign session token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.ErrCodeInternal, "Failed to create session"))
				return
			}
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

// SetSessionCookie signs the session ID and writes the cookie. Besides fresh
// guest sessions it is used after login, where the rotated session ID must
// reach the client before the response body.
func SetSessionCookie(c *gin.Context, codec *session.TokenCodec, cfg config.SessionConfig, sess *session.Session) error {
	token, err := codec.Encode(sess.ID)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.SameSite),
	})
	return nil
}

// resolve returns the stored session for a valid cookie, or nil when a new
// session is needed.
func resolve(c *gin.Context, store *session.RedisStore, codec *session.TokenCodec, cookieName string) *session.Session {
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return nil
	}
	id, err := codec.Decode(cookie)
	if err != nil {
		return nil
	}
	sess, err := store.Get(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return sess
}

// GetSession returns the session placed in the context by Session.
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
