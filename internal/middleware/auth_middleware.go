package middleware

import (
	"net/http"
	"strings"

	"sentinal-social/internal/services"
	"sentinal-social/internal/transport/httpdto"
	"sentinal-social/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenVerifier resolves a bearer token to the user it was issued to.
type TokenVerifier interface {
	CurrentUserID(token string) (uuid.UUID, error)
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := verifier.CurrentUserID(extractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithUserContext(c.Request.Context(), userID)
		ctx = logger.WithUserID(ctx, userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
