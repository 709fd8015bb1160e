package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/store"
	"github.com/iliyamo/ecommerce-backend/internal/token"
)

func guardFixture(t *testing.T) (*token.Service, *store.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := token.NewService(config.Config{
		VerificationSecret: "verification-secret",
		VerificationTTL:    10 * time.Minute,
		AccessSecret:       "access-secret",
		AccessTTL:          15 * time.Minute,
		RefreshSecret:      "refresh-secret",
		RefreshTTL:         24 * time.Hour,
	})
	return tokens, store.NewSessionStore(rdb)
}

func invoke(mw echo.MiddlewareFunc, authHeader string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return c, err
}

func TestAccessGuardSetsIdentity(t *testing.T) {
	tokens, sessions := guardFixture(t)

	raw, err := tokens.IssueAccess("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	c, err := invoke(Auth(KindAccess, tokens, sessions), "Bearer "+raw)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", c.Get(CtxEmail))
	assert.Equal(t, "user-1", c.Get(CtxUserID))
	assert.Equal(t, "CUSTOMER", c.Get(CtxRole))
	assert.Equal(t, "sess-1", c.Get(CtxSessionID))
}

func TestAccessGuardRejectsMissingHeader(t *testing.T) {
	tokens, sessions := guardFixture(t)

	_, err := invoke(Auth(KindAccess, tokens, sessions), "")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestAccessGuardRejectsRefreshToken(t *testing.T) {
	tokens, sessions := guardFixture(t)

	refresh, err := tokens.IssueRefresh("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	_, err = invoke(Auth(KindAccess, tokens, sessions), "Bearer "+refresh)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestRefreshGuardRequiresLiveSession(t *testing.T) {
	tokens, sessions := guardFixture(t)

	refresh, err := tokens.IssueRefresh("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	// No session cached: a perfectly signed refresh token is still dead.
	_, err = invoke(Auth(KindRefresh, tokens, sessions), "Bearer "+refresh)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)

	// Cache it and the same token passes.
	require.NoError(t, sessions.PutSession(context.Background(), "sess-1", refresh, time.Hour))
	c, err := invoke(Auth(KindRefresh, tokens, sessions), "Bearer "+refresh)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", c.Get(CtxSessionID))
}

func TestRefreshGuardRejectsRotatedToken(t *testing.T) {
	tokens, sessions := guardFixture(t)

	old, err := tokens.IssueRefresh("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)
	require.NoError(t, sessions.PutSession(context.Background(), "sess-1", old, time.Hour))

	// Rotation stores a different token under the same session id.
	require.NoError(t, sessions.PutSession(context.Background(), "sess-1", "newer-token", time.Hour))

	_, err = invoke(Auth(KindRefresh, tokens, sessions), "Bearer "+old)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxRole, "ADMIN")
	require.NoError(t, RequireRole("ADMIN")(next)(c))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxRole, "CUSTOMER")
	err := RequireRole("ADMIN")(next)(c)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
}
