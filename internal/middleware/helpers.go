// internal/middleware/helpers.go
package middleware

import (
	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

// GetUserID gets the authenticated user ID from context
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int64)
	return id, ok
}

// MustGetUserID gets the user ID from context or panics
func MustGetUserID(c *gin.Context) int64 {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

// GetRole gets the session role from context
func GetRole(c *gin.Context) (string, bool) {
	role, exists := c.Get("role")
	if !exists {
		return "", false
	}

	roleStr, ok := role.(string)
	return roleStr, ok
}

// GetSessionToken gets the access token backing this request's session
func GetSessionToken(c *gin.Context) (string, bool) {
	token, exists := c.Get("session_token")
	if !exists {
		return "", false
	}

	tokenStr, ok := token.(string)
	return tokenStr, ok
}

// MustGetSessionToken gets the session token from context or panics
func MustGetSessionToken(c *gin.Context) string {
	token, exists := GetSessionToken(c)
	if !exists {
		panic("session_token not found in context")
	}
	return token
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}

// HasRole checks if the request's session has a specific role
func HasRole(c *gin.Context, role string) bool {
	current, ok := GetRole(c)
	return ok && current == role
}

// IsStaff checks if the session belongs to any back-office role
func IsStaff(c *gin.Context) bool {
	current, ok := GetRole(c)
	return ok && session.IsPrivilegedRole(current)
}
