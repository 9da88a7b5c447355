package middleware

import (
	"propzy/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID propagates or assigns X-Request-ID and stores a request-scoped logger.
func RequestID(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(logger.RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Set(logger.RequestIDKey, requestID)
		c.Writer.Header().Set(logger.RequestIDHeader, requestID)
		logger.WithContext(c, base.With(zap.String(logger.RequestIDKey, requestID)))

		c.Next()
	}
}
