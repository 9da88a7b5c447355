package logger

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
	contextKey      = "logger"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// New builds a logger for the given environment and level.
// Development uses the console encoder, everything else JSON.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" || env == "prod" || env == "staging" || env == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(lvl)

	return cfg.Build()
}

// Set replaces the process logger.
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// L returns the process logger, falling back to a production logger.
func L() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		fallback, err := zap.NewProduction()
		if err != nil {
			fallback = zap.NewNop()
		}
		log = fallback
	}
	return log
}

// WithContext stores a request-scoped logger on the gin context.
func WithContext(c *gin.Context, l *zap.Logger) {
	c.Set(contextKey, l)
}

// FromContext returns the request-scoped logger, or the process logger
// tagged with whatever request id is available.
func FromContext(c *gin.Context) *zap.Logger {
	if c == nil {
		return L()
	}
	if l, ok := c.Get(contextKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	requestID := c.GetString(RequestIDKey)
	if requestID == "" {
		requestID = c.GetHeader(RequestIDHeader)
	}
	if requestID == "" {
		return L()
	}
	return L().With(zap.String(RequestIDKey, requestID))
}
