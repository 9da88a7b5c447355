package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"propzy/internal/pkg/logger"
	"propzy/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog writes one structured line per request. 5xx responses and
// collected gin errors are logged at error level.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int64("user_id", UserID(c)),
			zap.String("role", Role(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		log := logger.FromContext(c)
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case len(c.Errors) > 0 || status >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Recovery turns a panic into a 500 envelope so the server keeps serving.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("panic: %v", recovered)
				logger.FromContext(c).Error("panic recovered",
					zap.Error(err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				if !c.Writer.Written() {
					response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR",
						"Internal server error", err.Error())
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
