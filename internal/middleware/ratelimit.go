package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"spendtrack/internal/cache"
	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
)

// rateLimitWindow is the fixed counting window per client IP.
const rateLimitWindow = time.Minute

// RateLimit returns a Gin middleware enforcing a fixed-window request
// limit per client IP, counted in the cache store so all instances
// share one view. If the store is unreachable the request is allowed:
// availability over strictness.
func RateLimit(store cache.Store, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.RateLimitKey(c.ClientIP())

		count, err := store.Incr(c.Request.Context(), key, rateLimitWindow)
		if err != nil {
			logger.Get().Warnw("rate limiter degraded, allowing request", "error", err)
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			c.JSON(apperrors.ErrRateLimitExceeded.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrRateLimitExceeded.Code,
					"message": apperrors.ErrRateLimitExceeded.Message,
				},
				"requests":    count,
				"maxRequests": maxRequests,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
