package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"footix-auth-service/internal/adapter/ratelimit"
	"footix-auth-service/pkg/logger"
)

// RateLimiter returns a Gin middleware that spends one token per request
// from the caller's bucket and answers 429 once it is empty.
func RateLimiter(limiter *ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := ratelimit.Key(c.Request.Method, c.Request.URL.Path, c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open
			logger.WithContext(c.Request.Context(), log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}

		if !allowed {
			cfg := limiter.Config()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"details": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", cfg.RequestsPerSecond, cfg.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
