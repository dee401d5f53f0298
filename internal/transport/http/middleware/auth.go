package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/metrics"
	"github.com/azamatb/todo-tracker/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	errTokenRequired = "Access token is required"
	errTokenInvalid  = "Token is invalid or expired"

	// Gin context keys set by the guard chain.
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// tokenVerifier is the subset of AuthUsecase the guard needs.
type tokenVerifier interface {
	VerifyToken(raw string) (string, error)
}

// Auth validates a Bearer token and sets CtxUserIDKey in the gin
// context. Requests without a valid, unexpired token are rejected
// before any handler runs.
func Auth(verifier tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": errTokenRequired})
			return
		}

		userID, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": errTokenInvalid})
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// RequireUser runs after Auth. It resolves the token's user ID to a
// stored user and attaches it; a token for a vanished user is an
// authentication failure, not a server error.
func RequireUser(users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.FindByID(c.Request.Context(), c.GetString(CtxUserIDKey))
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				logger.ErrorContext(c.Request.Context(), "resolve user", "error", err)
			}
			metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "message": errTokenInvalid})
			return
		}

		c.Set(CtxUserKey, user)
		c.Next()
	}
}

// UserFromContext returns the authenticated user set by RequireUser.
func UserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
