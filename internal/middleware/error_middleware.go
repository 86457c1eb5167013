package middleware

import (
	"net/http"

	"sentinal-social/internal/transport/httpdto"
	"sentinal-social/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs errors handlers attached to the context. A handler that
// failed without writing a response gets a generic 500.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			if l != nil {
				l.Error(c.Request.Context(), "request error",
					zap.String("path", c.FullPath()),
					zap.Error(e.Err),
				)
			}
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
		}
	}
}
