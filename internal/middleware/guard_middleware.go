// internal/middleware/guard_middleware.go
package middleware

import (
	"carecycle-service/internal/pkg/response"
	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the access token for browser page navigation.
const SessionCookie = "cc_session"

// Navigation targets used by the route guards. These paths are part of the
// client contract and must not drift.
const (
	PrivilegedLoginPath = "/admin/login"
	StandardLoginPath   = "/login"
	UnauthorizedPath    = "/unauthorized"
)

// RoleDashboardPath is the landing page for a back-office role.
func RoleDashboardPath(role string) string {
	return "/" + role + "/dashboard"
}

// Guard gates browser page subtrees on session state. It knows nothing about
// routing beyond the redirect targets, and the session layer knows nothing
// about routing at all. Each request is checked exactly once, on entry.
type Guard struct {
	sessions *session.Manager
}

func NewGuard(sessions *session.Manager) *Guard {
	return &Guard{sessions: sessions}
}

// Privileged guards a back-office subtree. Unauthenticated visitors go to the
// privileged login page; authenticated visitors whose role is not in the
// allowed set land on the unauthorized page, keeping their still-valid
// session.
func (g *Guard) Privileged(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[session.NormalizeRole(role)] = true
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := extractToken(c)
		if token == "" || !g.sessions.IsValid(ctx, token) {
			response.Redirect(c, PrivilegedLoginPath)
			return
		}

		role := g.sessions.GetRole(ctx, token)
		if role == "" {
			// Session state went unreadable between checks: fail closed.
			g.sessions.Destroy(ctx, token)
			response.Redirect(c, PrivilegedLoginPath)
			return
		}

		if !allowed[role] {
			response.Redirect(c, UnauthorizedPath)
			return
		}

		g.sessions.Extend(ctx, token)
		c.Set("user_id", userIDFromSession(g.sessions, c, token))
		c.Set("role", role)
		c.Set("session_token", token)
		c.Next()
	}
}

// Customer guards the self-service portal, which only the customer role may
// enter. Back-office staff who wander in are bounced to their own dashboard
// rather than shown an error page; that asymmetry with Privileged is
// deliberate.
func (g *Guard) Customer() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := extractToken(c)
		if token == "" || !g.sessions.IsValid(ctx, token) {
			response.Redirect(c, StandardLoginPath)
			return
		}

		role := g.sessions.GetRole(ctx, token)
		if role == "" {
			g.sessions.Destroy(ctx, token)
			response.Redirect(c, StandardLoginPath)
			return
		}

		if role != session.RoleUser {
			response.Redirect(c, RoleDashboardPath(role))
			return
		}

		g.sessions.Extend(ctx, token)
		c.Set("user_id", userIDFromSession(g.sessions, c, token))
		c.Set("role", role)
		c.Set("session_token", token)
		c.Next()
	}
}

func userIDFromSession(sessions *session.Manager, c *gin.Context, token string) int64 {
	if user := sessions.GetUser(c.Request.Context(), token); user != nil {
		return user.ID
	}
	return 0
}
