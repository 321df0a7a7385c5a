package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/service"
	"github.com/tdiorio2323/cabana/pkg/response"
)

// RateLimit applies the sliding-window limiter per client IP. The key prefix
// keeps different endpoints from sharing a budget. A limiter failure allows
// the request through; limiting is best-effort, availability is not.
func RateLimit(svc service.RateLimitService, prefix string, max int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := prefix + ":" + c.ClientIP()

		result, err := svc.Check(c.Request.Context(), key, max, window)
		if err != nil {
			logger.Warn("rate limit check failed, allowing request", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
				zap.Time("reset", result.Reset),
			)
			response.RateLimited(c, time.Until(result.Reset), "too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
