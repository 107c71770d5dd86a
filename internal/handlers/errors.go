package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/middleware"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/service"
)

// fail maps err to a status code and writes the error body. Token failures
// share one message whatever the cause.
func (h HandlerSet) fail(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Basic realm="Authentication Required"`)
	}
	middleware.Abort(c, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrBlocked):
		return http.StatusForbidden, "Account has been blocked. Contact the site administrator."
	case errors.Is(err, auth.ErrUnconfirmed):
		return http.StatusForbidden, "Email not confirmed"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Insufficient permissions"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden, service.ErrInvalidToken.Error()
	case errors.Is(err, service.ErrInvalidPassword):
		return http.StatusForbidden, "Invalid password"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyConfirmed),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrAccountNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, repository.ErrCategoryNotFound):
		return http.StatusNotFound, "Category not found"
	case errors.Is(err, repository.ErrItemNotFound):
		return http.StatusNotFound, "Item not found"
	default:
		return http.StatusInternalServerError, ""
	}
}

func badRequest(c *gin.Context, message string) {
	middleware.Abort(c, http.StatusBadRequest, message)
}
