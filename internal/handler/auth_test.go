package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/mailer"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
	"github.com/iliyamo/ecommerce-backend/internal/store"
	"github.com/iliyamo/ecommerce-backend/internal/token"
)

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	byEmail map[string]model.User
	nextID  int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]model.User{}} }

func (f *fakeUsers) CreateVerified(_ context.Context, name, email, passwordHash string) (model.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return model.User{}, repository.ErrEmailExists
	}
	f.nextID++
	u := model.User{
		ID:           fmt.Sprintf("user-%d", f.nextID),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleCustomer,
	}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	for email, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = passwordHash
			f.byEmail[email] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

// capturingMailer records outbound mail instead of sending it.
type capturingMailer struct {
	mails []mailer.Mail
}

func (m *capturingMailer) Send(_ context.Context, mail mailer.Mail) error {
	m.mails = append(m.mails, mail)
	return nil
}

func (m *capturingMailer) last(t *testing.T) mailer.Mail {
	t.Helper()
	require.NotEmpty(t, m.mails)
	return m.mails[len(m.mails)-1]
}

// lastLinkSegments returns the trailing path segments of the link in the
// most recent mail.  Verification links end in /<token>, reset links in
// /<userId>/<token>.
func (m *capturingMailer) lastLinkSegments(t *testing.T, n int) []string {
	t.Helper()
	text := m.last(t).Text
	link := text[strings.LastIndex(text, " ")+1:]
	parts := strings.Split(link, "/")
	require.GreaterOrEqual(t, len(parts), n)
	return parts[len(parts)-n:]
}

type authFixture struct {
	e     *echo.Echo
	users *fakeUsers
	mail  *capturingMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Config{
		BackendHost:        "http://localhost:8080",
		BcryptCost:         4,
		VerificationSecret: "verification-secret",
		VerificationTTL:    10 * time.Minute,
		AccessSecret:       "access-secret",
		AccessTTL:          15 * time.Minute,
		RefreshSecret:      "refresh-secret",
		RefreshTTL:         24 * time.Hour,
	}
	tokens := token.NewService(cfg)
	sessions := store.NewSessionStore(rdb)
	users := newFakeUsers()
	mail := &capturingMailer{}
	h := NewAuthHandler(cfg, users, tokens, sessions, mail)

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	refreshGuard := middleware.Auth(middleware.KindRefresh, tokens, sessions)

	e.POST("/api/auth/register", h.Register)
	e.GET("/api/auth/verify/:token", h.VerifyEmail)
	e.POST("/api/auth/resend-verification-email", h.ResendVerification)
	e.POST("/api/auth/login", h.Login)
	e.POST("/api/auth/refresh", h.Refresh, refreshGuard)
	e.POST("/api/auth/logout", h.Logout, refreshGuard)
	e.POST("/api/auth/forgot-password", h.ForgotPassword)
	e.POST("/api/auth/reset-password/:userId/:token", h.ResetPassword)

	return &authFixture{e: e, users: users, mail: mail}
}

func (f *authFixture) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *authFixture) register(t *testing.T, email string) {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"name":"Ada","email":%q,"password":"pw12345678"}`, email), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (f *authFixture) verify(t *testing.T) {
	t.Helper()
	verifyToken := f.mail.lastLinkSegments(t, 1)[0]
	rec := f.do(http.MethodGet, "/api/auth/verify/"+verifyToken, "", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (f *authFixture) login(t *testing.T, email, password string) tokenPair {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Message.AccessToken)
	require.NotEmpty(t, resp.Message.RefreshToken)
	return resp.Message
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		Success   bool `json:"success"`
		ErrorCode int  `json:"error_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.ErrorCode
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	// No user row yet: login before verification reports an unknown user.
	rec := f.do(http.MethodPost, "/api/auth/login",
		`{"email":"ada@example.com","password":"pw12345678"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.verify(t)
	f.login(t, "ada@example.com", "pw12345678")
}

func TestVerifyLinkIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	verifyToken := f.mail.lastLinkSegments(t, 1)[0]

	rec := f.do(http.MethodGet, "/api/auth/verify/"+verifyToken, "", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/api/auth/verify/"+verifyToken, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperr.CodeInvalidToken), errorCode(t, rec))
}

func TestResendInvalidatesOldLink(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	oldToken := f.mail.lastLinkSegments(t, 1)[0]

	rec := f.do(http.MethodPost, "/api/auth/resend-verification-email",
		`{"email":"ada@example.com"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The resend rewrote the nonce, so the first link is dead.
	rec = f.do(http.MethodGet, "/api/auth/verify/"+oldToken, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.verify(t)
}

func TestResendWithoutPendingSignup(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/resend-verification-email",
		`{"email":"nobody@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperr.CodeEmailNotFound), errorCode(t, rec))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	f.verify(t)

	rec := f.do(http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"pw12345678"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperr.CodeUserAlreadyExists), errorCode(t, rec))
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"pw12345678"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int(apperr.CodeUserNotFound), errorCode(t, rec))

	f.register(t, "ada@example.com")
	f.verify(t)

	rec = f.do(http.MethodPost, "/api/auth/login",
		`{"email":"ada@example.com","password":"wrong-password"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperr.CodeIncorrectCredentials), errorCode(t, rec))
}

func TestRefreshRotationAndLogout(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	f.verify(t)
	pair := f.login(t, "ada@example.com", "pw12345678")

	// Rotate: a new pair comes back and the old refresh token dies.
	rec := f.do(http.MethodPost, "/api/auth/refresh", "", pair.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotEmpty(t, rotated.Message.RefreshToken)

	rec = f.do(http.MethodPost, "/api/auth/refresh", "", pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout kills the session; the rotated token stops working too.
	rec = f.do(http.MethodPost, "/api/auth/logout", "", rotated.Message.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/auth/refresh", "", rotated.Message.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConcurrentLoginsAreIndependentSessions(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	f.verify(t)
	first := f.login(t, "ada@example.com", "pw12345678")
	second := f.login(t, "ada@example.com", "pw12345678")

	// Logging out the second session leaves the first alive.
	rec := f.do(http.MethodPost, "/api/auth/logout", "", second.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/refresh", "", first.RefreshToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)

	f.register(t, "ada@example.com")
	f.verify(t)

	rec := f.do(http.MethodPost, "/api/auth/forgot-password",
		`{"email":"ada@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	segments := f.mail.lastLinkSegments(t, 2)
	userID, resetToken := segments[0], segments[1]

	rec = f.do(http.MethodPost, "/api/auth/reset-password/"+userID+"/"+resetToken,
		`{"password":"newpw12345678"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The token was signed against the old hash; after the change it is
	// unverifiable, making it single-use.
	rec = f.do(http.MethodPost, "/api/auth/reset-password/"+userID+"/"+resetToken,
		`{"password":"anotherpw12345"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int(apperr.CodeInvalidToken), errorCode(t, rec))

	f.login(t, "ada@example.com", "newpw12345678")
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/forgot-password",
		`{"email":"nobody@example.com"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int(apperr.CodeUserNotFound), errorCode(t, rec))
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []string{
		`{"name":"","email":"ada@example.com","password":"pw12345678"}`,
		`{"name":"Ada","email":"not-an-email","password":"pw12345678"}`,
		`{"name":"Ada","email":"ada@example.com","password":"short"}`,
	}
	for _, body := range cases {
		rec := f.do(http.MethodPost, "/api/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, int(apperr.CodeUnprocessableEntity), errorCode(t, rec))
	}
}
