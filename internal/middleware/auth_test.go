package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"audittracker/internal/auth"
	"audittracker/internal/policy"
	"audittracker/pkg/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestGuard(t *testing.T, denylist Denylist) (*Guard, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("middleware-test-secret", "audittracker", time.Hour)
	require.NoError(t, err)
	return NewGuard(tokens, policy.Default(), denylist), tokens
}

func issue(t *testing.T, tokens *auth.TokenManager, role string) (string, *auth.Claims) {
	t.Helper()
	token, _, err := tokens.Issue(auth.Claims{
		UserID: "2b7e1516-28ae-4d2a-a6d2-abf715880901",
		Email:  "user@example.com",
		RoleID: "6bc1bee2-2e40-4f96-a93d-7e117393172a",
		Role:   role,
		Name:   "Test User",
	})
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	return token, claims
}

func newRouter(g *Guard) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", g.Authenticate())
	api.GET("/audits", g.Require(policy.For(policy.Audits, policy.VerbView)), func(c *gin.Context) {
		claims, _ := CurrentUser(c)
		c.JSON(http.StatusOK, response.Success(claims.Role))
	})
	api.DELETE("/audits/:id", g.Require(policy.For(policy.Audits, policy.VerbDelete)), func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Success(nil))
	})
	return r
}

func do(r http.Handler, method, path, token string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticate_MissingToken(t *testing.T) {
	g, _ := newTestGuard(t, nil)
	w, body := do(newRouter(g), http.MethodGet, "/api/audits", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	g, _ := newTestGuard(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/audits", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	newRouter(g).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	g, _ := newTestGuard(t, nil)
	w, _ := do(newRouter(g), http.MethodGet, "/api/audits", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequire_RoleMembership(t *testing.T) {
	g, tokens := newTestGuard(t, nil)
	r := newRouter(g)

	viewer, _ := issue(t, tokens, policy.RoleViewer)
	admin, _ := issue(t, tokens, policy.RoleAdmin)

	w, body := do(r, http.MethodGet, "/api/audits", viewer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, policy.RoleViewer, body.Data)

	w, body = do(r, http.MethodDelete, "/api/audits/1", viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	w, _ = do(r, http.MethodDelete, "/api/audits/1", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequire_UnknownRoleDenied(t *testing.T) {
	g, tokens := newTestGuard(t, nil)
	token, _ := issue(t, tokens, "admin")

	w, _ := do(newRouter(g), http.MethodGet, "/api/audits", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	denylist := NewRedisDenylist(client)
	g, tokens := newTestGuard(t, denylist)
	r := newRouter(g)

	token, claims := issue(t, tokens, policy.RoleAdmin)

	w, _ := do(r, http.MethodGet, "/api/audits", token)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	w, body := do(r, http.MethodGet, "/api/audits", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "token has been revoked", body.Error.Message)
}

func TestRedisDenylist_ExpiresWithToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	d := NewRedisDenylist(client)
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired tokens are not stored
	require.NoError(t, d.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
