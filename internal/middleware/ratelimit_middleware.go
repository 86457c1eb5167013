package middleware

import (
	"context"
	"net/http"
	"strconv"

	"sentinal-social/internal/redis"
	"sentinal-social/internal/services"
	"sentinal-social/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// Limiter is the subset of the redis rate limiter the middleware needs.
type Limiter interface {
	AllowMessage(ctx context.Context, userID string) (*redis.Decision, error)
	AllowAuth(ctx context.Context, ip string) (*redis.Decision, error)
}

// AuthRateLimitMiddleware limits auth attempts per client IP. A nil limiter
// disables it.
func AuthRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		if !admit(c, result, err, "rate limit exceeded") {
			return
		}
		c.Next()
	}
}

// MessageRateLimitMiddleware limits posted messages per user. It must run
// after AuthMiddleware. A nil limiter disables it.
func MessageRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok {
			// No user context, skip rate limiting (auth middleware will handle)
			c.Next()
			return
		}

		result, err := limiter.AllowMessage(c.Request.Context(), userID.String())
		if !admit(c, result, err, "message rate limit exceeded") {
			return
		}
		c.Next()
	}
}

func admit(c *gin.Context, result *redis.Decision, err error, msg string) bool {
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("rate limit unavailable", "UNAVAILABLE"))
		c.Abort()
		return false
	}

	setRateLimitHeaders(c, result)

	if !result.Allowed {
		c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(msg, "RATE_LIMITED"))
		c.Abort()
		return false
	}
	return true
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
