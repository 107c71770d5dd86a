package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jnitin/flask-catalog/internal/models"
)

// RequirePermission rejects callers whose role lacks perm. It must run after
// Authenticate.
func RequirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id.IsAnonymous() {
			unauthorized(c, "Authentication required")
			return
		}
		if !id.Can(perm) {
			Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}
