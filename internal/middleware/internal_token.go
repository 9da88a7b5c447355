package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"propzy/internal/pkg/logger"
	"propzy/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InternalTokenAuth protects operational endpoints (metrics) with a static
// bearer token. An empty token disables the endpoint.
func InternalTokenAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			logInternalAuthFailure(c, http.StatusNotFound, "disabled")
			response.Abort(c, http.StatusNotFound, "NOT_FOUND", "Not found")
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			logInternalAuthFailure(c, http.StatusUnauthorized, "missing_auth")
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logInternalAuthFailure(c, http.StatusUnauthorized, "invalid_auth_format")
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			logInternalAuthFailure(c, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logInternalAuthFailure(c *gin.Context, status int, reason string) {
	logger.FromContext(c).Warn("internal endpoint auth failed",
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason),
	)
}
