package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/infrastructure/ratelimit"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// LoginRateLimitConfig bounds how often a single messenger id may start the
// OAuth handshake (§6.3's GET /hh/login), keyed by the caller-supplied
// messenger_id, since the shared internal API token that authenticates the
// route identifies no individual user.
var LoginRateLimitConfig = ratelimit.RateLimitConfig{
	RequestsPerMinute: 5,
	RequestsPerHour:   20,
	BurstSize:         5,
}

// LoginRateLimit throttles OAuth-login starts per messenger id.
func LoginRateLimit(limiter ratelimit.RateLimiter, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		messengerID := c.Query("messenger_id")
		if messengerID == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("hh-login:%s", messengerID)
		allowed, err := limiter.Allow(key, LoginRateLimitConfig)
		if err != nil {
			log.Warnw("login rate limit check failed", "error", err, "messenger_id", messengerID)
			c.Next()
			return
		}

		// GetRemaining reports how many requests the window already holds.
		used, err := limiter.GetRemaining(key, time.Minute)
		if err != nil {
			used = int64(LoginRateLimitConfig.RequestsPerMinute)
		}
		remaining := int64(LoginRateLimitConfig.RequestsPerMinute) - used
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			log.Warnw("login rate limit exceeded", "messenger_id", messengerID)
			c.Header("Retry-After", "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "too many login attempts, try again shortly")
			c.Abort()
			return
		}

		c.Next()
	}
}
