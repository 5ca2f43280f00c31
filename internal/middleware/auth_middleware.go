// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"carecycle-service/internal/pkg/jwt"
	"carecycle-service/internal/pkg/response"
	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
	sessions *session.Manager
}

func NewAuthMiddleware(verifier *jwt.Verifier, sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		sessions: sessions,
	}
}

// Auth is the base authentication middleware for JSON API routes. It checks
// the bearer token's signature and the live session record behind it. A 401
// from here always means the session has already been cleared; clients treat
// any 401 as "log in again", never as "retry".
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			// Clear whatever record the bad token points at before rejecting.
			m.sessions.Destroy(c.Request.Context(), token)
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		if !m.sessions.IsValid(c.Request.Context(), token) {
			response.Unauthorized(c, "session expired")
			return
		}

		// Every successful authenticated call extends the session.
		m.sessions.Extend(c.Request.Context(), token)

		c.Set("user_id", claims.UserID)
		c.Set("role", m.sessions.GetRole(c.Request.Context(), token))
		c.Set("session_token", token)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireRole requires the session role to be one of the given roles.
// MUST be used after Auth()
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetRole(c)
		if !exists {
			response.Forbidden(c, "no role found - authentication required")
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
			"user_role":      role,
		})
	}
}

// AdminOnly returns middlewares for admin-only API routes (Auth + RequireRole)
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(session.RoleAdmin, session.RoleManager),
	}
}

// StaffOnly returns middlewares for any back-office role
func (m *AuthMiddleware) StaffOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(session.RoleAdmin, session.RoleManager, session.RoleConsultant, session.RoleStaff),
	}
}

// OptionalAuth middleware that doesn't abort if no token is provided
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil || !m.sessions.IsValid(c.Request.Context(), token) {
			// Don't abort, just continue without setting user context
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", m.sessions.GetRole(c.Request.Context(), token))
		c.Set("session_token", token)
		c.Set("authenticated", true)

		c.Next()
	}
}

// extractToken extracts the bearer token from the Authorization header, with
// a session cookie fallback for browser page navigation.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	return ""
}
