// internal/handler/auth_handler.go
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/middleware"
	"github.com/gurkanbulca/projecttracker/internal/models"
	"github.com/gurkanbulca/projecttracker/internal/service"
	"github.com/gurkanbulca/projecttracker/pkg/auth"
)

// Authenticator is the authentication service as used over HTTP.
type Authenticator interface {
	middleware.Authenticator
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*service.Session, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

func NewAuthHandler(a Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: a, log: log}
}

type sessionResponse struct {
	User *models.User `json:"user"`
	*auth.TokenPair
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := bindJSON(c, &in, true); err != nil {
		fail(c, h.log, err, "Error registering user")
		return
	}

	session, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, h.log, err, "Error registering user")
		return
	}
	created(c, "User registered successfully", sessionResponse{User: session.User, TokenPair: session.Tokens})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := bindJSON(c, &in, true); err != nil {
		fail(c, h.log, err, "Error logging in")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, h.log, err, "Error logging in")
		return
	}
	ok(c, "Login successful", sessionResponse{User: session.User, TokenPair: session.Tokens})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req, true); err != nil {
		fail(c, h.log, err, "Error refreshing token")
		return
	}

	session, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, h.log, err, "Error refreshing token")
		return
	}
	ok(c, "Token refreshed successfully", sessionResponse{User: session.User, TokenPair: session.Tokens})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, found := middleware.GetClaims(c)
	if !found {
		c.JSON(http.StatusUnauthorized, Response{Message: "Unauthenticated."})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		fail(c, h.log, err, "Error logging out")
		return
	}
	ok(c, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), callerID(c))
	if err != nil {
		fail(c, h.log, err, "Error retrieving user")
		return
	}
	ok(c, "User retrieved successfully", user)
}
