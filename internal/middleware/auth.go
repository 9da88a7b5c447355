package middleware

import (
	"errors"
	"net/http"
	"strings"

	"propzy/internal/pkg/jwt"
	"propzy/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type tokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

// JWTAuth requires a valid bearer token and stores user_id and role on the context.
func JWTAuth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}
		if !authenticate(c, tokens, header) {
			return
		}
		c.Next()
	}
}

// OptionalJWTAuth attaches the identity when a bearer token is sent and lets
// anonymous requests through. A malformed or invalid token is still rejected.
func OptionalJWTAuth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if !authenticate(c, tokens, header) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens tokenValidator, header string) bool {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
		return false
	}

	claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			response.Abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
			return false
		}
		response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	return true
}

// UserID returns the authenticated user id, or 0.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

// Role returns the authenticated role, or "".
func Role(c *gin.Context) string {
	return c.GetString(ContextRole)
}
