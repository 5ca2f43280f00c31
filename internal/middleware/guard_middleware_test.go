package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newGuardFixture(t *testing.T) (*session.Manager, *testClock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	manager := session.NewManager(session.NewMemoryStore(), zap.NewNop(), session.WithClock(clock.Now))
	guard := NewGuard(manager)

	r := gin.New()
	admin := r.Group("/admin", guard.Privileged(session.RoleAdmin))
	admin.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "admin users"})
	})

	consultant := r.Group("/consultant", guard.Privileged(session.RoleConsultant))
	consultant.GET("/schedule", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "consultant schedule"})
	})

	portal := r.Group("/", guard.Customer())
	portal.GET("/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "profile"})
	})

	return manager, clock, r
}

func login(t *testing.T, manager *session.Manager, token, role string) {
	t.Helper()
	_, err := manager.Create(t.Context(), token, session.UserInfo{
		ID:       7,
		Role:     role,
		FullName: "Test Person",
		Email:    "test@example.com",
	}, "")
	require.NoError(t, err)
}

func navigate(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPrivilegedGuardUnauthenticated(t *testing.T) {
	_, _, r := newGuardFixture(t)

	w := navigate(r, "/admin/users", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}

func TestPrivilegedGuardWrongRole(t *testing.T) {
	manager, _, r := newGuardFixture(t)

	// Authenticated as a plain customer: the session is fine, only the
	// destination is disallowed, so this is /unauthorized, not a login page.
	login(t, manager, "tok-user", session.RoleUser)
	w := navigate(r, "/admin/users", "tok-user")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))

	// The still-valid session must not be cleared by a role miss.
	assert.True(t, manager.IsValid(t.Context(), "tok-user"))

	// A consultant is privileged but not in this subtree's allowed set.
	login(t, manager, "tok-cons", session.RoleConsultant)
	w = navigate(r, "/admin/users", "tok-cons")
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))
}

func TestPrivilegedGuardAuthorizedExtends(t *testing.T) {
	manager, clock, r := newGuardFixture(t)

	login(t, manager, "tok-admin", session.RoleAdmin)
	clock.Advance(10 * time.Minute)

	w := navigate(r, "/admin/users", "tok-admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30*time.Minute, manager.TimeRemaining(t.Context(), "tok-admin"),
		"mounting a protected route extends the session")
}

func TestPrivilegedGuardExpiredSession(t *testing.T) {
	manager, clock, r := newGuardFixture(t)

	login(t, manager, "tok-admin", session.RoleAdmin)
	clock.Advance(31 * time.Minute)

	w := navigate(r, "/admin/users", "tok-admin")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	assert.Nil(t, manager.GetUser(t.Context(), "tok-admin"), "expired session must be cleared")
}

func TestCustomerGuardUnauthenticated(t *testing.T) {
	_, _, r := newGuardFixture(t)

	w := navigate(r, "/profile", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestCustomerGuardBouncesStaffToOwnDashboard(t *testing.T) {
	manager, _, r := newGuardFixture(t)

	login(t, manager, "tok-admin", session.RoleAdmin)
	w := navigate(r, "/profile", "tok-admin")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"),
		"staff in the customer area land on their dashboard, not /unauthorized")

	login(t, manager, "tok-cons", session.RoleConsultant)
	w = navigate(r, "/profile", "tok-cons")
	assert.Equal(t, "/consultant/dashboard", w.Header().Get("Location"))
}

func TestCustomerGuardAuthorized(t *testing.T) {
	manager, _, r := newGuardFixture(t)

	login(t, manager, "tok-user", session.RoleUser)
	w := navigate(r, "/profile", "tok-user")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, manager.IsValid(t.Context(), "tok-user"))
}

func TestGuardCorruptSessionFailsClosed(t *testing.T) {
	manager, _, r := newGuardFixture(t)

	login(t, manager, "tok-admin", session.RoleAdmin)

	// Corrupting the record makes IsValid tear it down and the guard treat
	// the visitor as unauthenticated.
	require.NoError(t, manager.Destroy(t.Context(), "tok-admin"))
	w := navigate(r, "/admin/users", "tok-admin")
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}
