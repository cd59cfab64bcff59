package middleware

import (
	"net/http"
	"slices"
	"strings"

	"medshop/internal/auth"
	"medshop/pkg/logger"
	"medshop/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// authenticate parses the token and stores the caller in the gin context
func authenticate(c *gin.Context, tokens *auth.TokenManager, raw string) bool {
	claims, err := tokens.Parse(raw)
	if err != nil {
		logger.Debug(c.Request.Context(), "token rejected", "error", err)
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		return false
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextUserRole, claims.Role)
	return true
}

// RequireAuth validates the bearer token and rejects the request with 401 otherwise
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authorization is missing. Expected 'Bearer <token>'"))
			return
		}
		if !authenticate(c, tokens, raw) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Invalid or expired token"))
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets anonymous requests through
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			authenticate(c, tokens, raw)
		}
		c.Next()
	}
}

// RequireRole checks the role set by RequireAuth. Mount it after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := UserRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("Authentication required"))
			return
		}
		if !slices.Contains(allowedRoles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error("Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, if any
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// UserIDPtr is UserID as a nullable foreign key
func UserIDPtr(c *gin.Context) *uint {
	if id, ok := UserID(c); ok {
		return &id
	}
	return nil
}

// UserRole returns the authenticated role or ""
func UserRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}
