package handler

import (
	"errors"
	"net/http"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errTaskNotFound       = "Task not found"
	errInvalidCredentials = "Invalid email or password"
)

// errorBody is the uniform failure response:
// {success:false, message, error?}. The error detail is echoed only
// when the server runs in debug mode (local env).
func errorBody(message string, err error, debug bool) gin.H {
	body := gin.H{"success": false, "message": message}
	if debug && err != nil {
		body["error"] = err.Error()
	}
	return body
}

// writeError maps a usecase failure onto the error taxonomy: 400 for
// validation and registration conflicts, 401 for credential failures,
// 404 for missing or foreign-owned records, 500 otherwise.
func writeError(c *gin.Context, err error, debug bool) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, errorBody(vErr.Message, nil, false))
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, errorBody(err.Error(), nil, false))
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorBody(errInvalidCredentials, nil, false))
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, errorBody(errTaskNotFound, nil, false))
	default:
		c.JSON(http.StatusInternalServerError, errorBody(errInternalServer, err, debug))
	}
}
