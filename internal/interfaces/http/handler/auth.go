package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/storefront/backend/internal/application/identity"
	identitydom "github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/session"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves registration, login and logout. It carries the token
// codec because login rotates the session ID and must re-issue the cookie.
type AuthHandler struct {
	BaseHandler
	service    *appidentity.AuthService
	codec      *session.TokenCodec
	sessionCfg config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *appidentity.AuthService, codec *session.TokenCodec, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: service, codec: codec, sessionCfg: sessionCfg}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

// RegisterRequest is the registration request body
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the login request body; login accepts username or email
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is an account rendered for the storefront
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	Role        string     `json:"role"`
	CityID      int64      `json:"city_id,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newUserResponse(u *identitydom.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CityID:      u.CityID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Register creates a customer account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, newUserResponse(user))
}

// Login authenticates the session and merges the guest cart
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}

	sess := getSession(c)
	user, err := h.service.Login(c.Request.Context(), sess, req.Login, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// the login rotated the session ID; the client needs the new cookie
	if err := middleware.SetSessionCookie(c, h.codec, h.sessionCfg, sess); err != nil {
		logger.FromGinContext(c).Error("failed to re-issue session cookie", zap.Error(err))
		h.InternalError(c, "Failed to establish session")
		return
	}
	h.Success(c, newUserResponse(user))
}

// Logout unbinds the user from the session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), getSession(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"logged_out": true})
}

// Me returns the account bound to the session
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.CurrentUser(c.Request.Context(), getSession(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newUserResponse(user))
}
