// Package middleware provides gin middleware for authentication, request
// logging, rate limiting, and metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ywahab/salahtrack/internal/auth"
	"github.com/ywahab/salahtrack/internal/httpapi"
)

const (
	// ContextUserIDKey is the gin context key holding the authenticated
	// user ID.
	ContextUserIDKey = "user_id"
	// ContextEmailKey is the gin context key holding the authenticated
	// user's email.
	ContextEmailKey = "email"
)

// UserID extracts the authenticated user ID from the gin context.
// Returns empty string when the request is unauthenticated.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// RequireAuth validates the Bearer JWT and stores the user ID and email in
// the request context. Requests without a valid token are rejected with
// 401 so the client can redirect to sign-in.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpapi.Error(c, http.StatusUnauthorized, httpapi.CodeUnauthenticated, auth.ErrMissingToken.Error())
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httpapi.Error(c, http.StatusUnauthorized, httpapi.CodeUnauthenticated, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			httpapi.Error(c, http.StatusUnauthorized, httpapi.CodeUnauthenticated, auth.ErrInvalidToken.Error())
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}
