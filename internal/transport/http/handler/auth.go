package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
	debug       bool
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger, debug bool) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
		debug:       debug,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// The password hash never crosses the API boundary: responses are
// built from this struct, not from the domain user.
func toUserPayload(u *domain.User) userPayload {
	return userPayload{ID: u.ID, Username: u.Username, Email: u.Email}
}

type authResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("All fields are required", err, h.debug))
		return
	}

	user, token, err := h.authUsecase.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.logError(c, "register", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Success: true,
		Message: "Registration completed",
		Token:   token,
		User:    toUserPayload(user),
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Email and password are required", err, h.debug))
		return
	}

	user, token, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logError(c, "login", err)
		writeError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    toUserPayload(user),
	})
}

// GET /api/auth/me
// Runs behind the auth guard; the user is already resolved.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("Token is invalid or expired", nil, false))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    toUserPayload(user),
	})
}

// logError skips expected client failures so the log only carries
// genuine server problems.
func (h *AuthHandler) logError(c *gin.Context, op string, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) ||
		errors.Is(err, domain.ErrEmailTaken) ||
		errors.Is(err, domain.ErrUsernameTaken) ||
		errors.Is(err, domain.ErrInvalidCredentials) {
		return
	}
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
}
