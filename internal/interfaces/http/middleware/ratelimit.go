package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/infrastructure/ratelimit"
	"github.com/zenthea/sessionguard/internal/shared/logger"
	"github.com/zenthea/sessionguard/internal/shared/utils"
)

// RateLimiter throttles requests per client IP using a shared Redis limiter,
// so the limit holds across instances.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	limits  []ratelimit.Limit
	prefix  string
	logger  logger.Interface
}

// NewRateLimiter creates the middleware. prefix namespaces the counters of one route group.
func NewRateLimiter(limiter ratelimit.RateLimiter, prefix string, logger logger.Interface, limits ...ratelimit.Limit) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		limits:  limits,
		prefix:  prefix,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.prefix + ":" + c.ClientIP()

		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.limits...)
		if err != nil {
			// Redis unavailable: let traffic through rather than block every client
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
