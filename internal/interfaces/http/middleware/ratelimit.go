package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scoutystream/scouty/internal/infrastructure/ratelimit"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type RateLimiter struct {
	limiter ratelimit.RateLimiter
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, logger logger.Interface) *RateLimiter {
	return &RateLimiter{limiter: limiter, logger: logger}
}

// Limit enforces the budget per client IP. A limiter error lets the request
// through rather than blocking all traffic.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter == nil {
			c.Next()
			return
		}

		allowed, err := rl.limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
