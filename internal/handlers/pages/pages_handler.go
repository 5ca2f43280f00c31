// internal/handlers/pages/pages_handler.go
package pages

import (
	"fmt"
	"net/http"

	"carecycle-service/internal/middleware"
	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the minimal server-rendered pages the route guards
// redirect to. The real UI is a separate frontend; these pages keep the
// redirect targets working when the service runs standalone.
type PageHandler struct {
	sessions *session.Manager
}

func NewPageHandler(sessions *session.Manager) *PageHandler {
	return &PageHandler{sessions: sessions}
}

// Login serves the customer login page. An already-authenticated visitor is
// sent straight to their dashboard.
func (h *PageHandler) Login(c *gin.Context) {
	if h.redirectIfAuthenticated(c) {
		return
	}
	h.render(c, "Sign in", `<h1>Sign in</h1>
<p>Use POST /api/v1/auth/login with your email and password.</p>`)
}

// AdminLogin serves the back-office login page.
func (h *PageHandler) AdminLogin(c *gin.Context) {
	if h.redirectIfAuthenticated(c) {
		return
	}
	h.render(c, "Staff sign in", `<h1>Staff sign in</h1>
<p>Back-office access only. Use POST /api/v1/auth/login.</p>`)
}

// Unauthorized serves the access-denied page. The session stays valid; the
// visitor just lacks the role for wherever they came from.
func (h *PageHandler) Unauthorized(c *gin.Context) {
	h.render(c, "Access denied", `<h1>Access denied</h1>
<p>Your account does not have permission to view that page.</p>
<p><a href="/">Back to home</a></p>`)
}

// Dashboard serves the role dashboard named in the URL. The guard has
// already verified the session and role before this runs.
func (h *PageHandler) Dashboard(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, "Dashboard", fmt.Sprintf(`<h1>%s dashboard</h1>
<p>Signed in as user %d.</p>`, role, middleware.MustGetUserID(c)))
	}
}

// Portal serves the customer home page behind the customer guard.
func (h *PageHandler) Portal(c *gin.Context) {
	h.render(c, "CareCycle", fmt.Sprintf(`<h1>Welcome back</h1>
<p>Signed in as user %d.</p>
<p><a href="/user/dashboard">Go to your dashboard</a></p>`, middleware.MustGetUserID(c)))
}

// redirectIfAuthenticated sends a logged-in visitor from a login page to
// their role dashboard.
func (h *PageHandler) redirectIfAuthenticated(c *gin.Context) bool {
	token, err := c.Cookie(middleware.SessionCookie)
	if err != nil || token == "" {
		return false
	}
	if !h.sessions.IsValid(c.Request.Context(), token) {
		return false
	}
	role := h.sessions.GetRole(c.Request.Context(), token)
	if role == "" {
		return false
	}
	c.Redirect(http.StatusSeeOther, middleware.RoleDashboardPath(role))
	return true
}

func (h *PageHandler) render(c *gin.Context, title, body string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s | CareCycle</title></head>
<body>%s</body>
</html>`, title, body)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
