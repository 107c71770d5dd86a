package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("route", c.FullPath()).
					Str("request_id", c.Writer.Header().Get(requestIDHeader)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				Abort(c, http.StatusInternalServerError, "")
			}
		}()
		c.Next()
	}
}
