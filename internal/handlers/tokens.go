package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/middleware"
)

// IssueToken exchanges email and password credentials for a session token.
// A session token cannot be used to mint another one.
func (h HandlerSet) IssueToken(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	account, ok := id.Account()
	if !ok || id.UsedToken() {
		h.fail(c, auth.ErrUnauthorized)
		return
	}

	token, ttl, err := h.authService.IssueSessionToken(account)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expiration": int(ttl.Seconds()),
	})
}
