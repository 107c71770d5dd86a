package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Abort ends the request with the API error body.
func Abort(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": message,
	})
}
