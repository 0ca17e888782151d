package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// InternalAuth gates the bot/admin-facing surface (§6.3) behind a single
// shared bearer token, the way the teacher gates its agent API behind a
// node token. The OAuth callback and the payment-confirmation endpoint
// authenticate differently and must not be wrapped by this middleware.
func InternalAuth(token string, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			utils.ErrorResponse(c, http.StatusInternalServerError, "internal API token not configured")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			log.Warnw("rejected internal API request", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid bearer token")
			c.Abort()
			return
		}

		c.Next()
	}
}
