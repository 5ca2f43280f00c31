package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carecycle-service/internal/pkg/jwt"
	"carecycle-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAPIFixture(t *testing.T) (*session.Manager, *jwt.Manager, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager, err := jwt.Build(jwt.Config{
		Secret:   "test-secret",
		Issuer:   "carecycle",
		Audience: "carecycle-clients",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemoryStore(), zap.NewNop())
	authMW := NewAuthMiddleware(jwtManager.Verifier, sessions)

	r := gin.New()
	api := r.Group("/api/v1", authMW.Auth())
	api.GET("/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": MustGetUserID(c)})
	})

	admin := r.Group("/api/v1/admin", authMW.AdminOnly()...)
	admin.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return sessions, jwtManager, r
}

func apiLogin(t *testing.T, sessions *session.Manager, jwtManager *jwt.Manager, role string) string {
	t.Helper()
	token, _, err := jwtManager.Generator.GenerateAccessToken(7, role)
	require.NoError(t, err)
	_, err = sessions.Create(t.Context(), token, session.UserInfo{ID: 7, Role: role}, "")
	require.NoError(t, err)
	return token
}

func call(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingToken(t *testing.T) {
	_, _, r := newAPIFixture(t)
	w := call(r, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBogusToken(t *testing.T) {
	_, _, r := newAPIFixture(t)
	w := call(r, "/api/v1/auth/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthValidTokenWithoutSession(t *testing.T) {
	_, jwtManager, r := newAPIFixture(t)

	// A well-signed token whose session has been destroyed is still a 401;
	// there is no silent refresh on this path.
	token, _, err := jwtManager.Generator.GenerateAccessToken(7, session.RoleUser)
	require.NoError(t, err)

	w := call(r, "/api/v1/auth/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHappyPath(t *testing.T) {
	sessions, jwtManager, r := newAPIFixture(t)
	token := apiLogin(t, sessions, jwtManager, session.RoleUser)

	w := call(r, "/api/v1/auth/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireRole(t *testing.T) {
	sessions, jwtManager, r := newAPIFixture(t)

	userToken := apiLogin(t, sessions, jwtManager, session.RoleUser)
	w := call(r, "/api/v1/admin/users", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := apiLogin(t, sessions, jwtManager, session.RoleAdmin)
	w = call(r, "/api/v1/admin/users", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
