package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/mailer"
	"github.com/iliyamo/ecommerce-backend/internal/metrics"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
	"github.com/iliyamo/ecommerce-backend/internal/store"
	"github.com/iliyamo/ecommerce-backend/internal/token"
	"github.com/iliyamo/ecommerce-backend/internal/utils"
)

// signupNonceBytes sizes the random nonce binding a verification link to
// the pending signup entry that issued it.
const signupNonceBytes = 16

// dbTimeout bounds every persistence call made from a handler.
const dbTimeout = 5 * time.Second

// UserStore is the slice of the persistence collaborator the auth flows
// need.  *repository.UserRepo satisfies it; tests substitute a fake.
type UserStore interface {
	CreateVerified(ctx context.Context, name, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Tokens   *token.Service
	Sessions *store.SessionStore
	Mail     mailer.Mailer
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens *token.Service, sessions *store.SessionStore, mail mailer.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Sessions: sessions, Mail: mail}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type passwordReq struct {
	Password string `json:"password"`
}
type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
type messageResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
type tokenResp struct {
	Success bool      `json:"success"`
	Message tokenPair `json:"message"`
}

// Register hashes the password, caches the signup and mails a verification
// link.  No user row is written yet: unverified accounts never reach the
// database.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	req.Email = normalizeEmail(req.Email)
	if req.Name == "" || !validEmail(req.Email) || len(req.Password) < 8 {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		metrics.AuthEvent("register", "conflict")
		return apperr.BadRequest(apperr.CodeUserAlreadyExists, "User already exists!")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	nonce, err := utils.RandomHex(signupNonceBytes)
	if err != nil {
		return err
	}

	pending := store.PendingSignup{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		SessionID:    nonce,
	}
	if err := h.Sessions.PutPendingSignup(ctx, pending, h.Tokens.VerificationTTL()); err != nil {
		return err
	}

	verificationToken, err := h.Tokens.IssueVerification(req.Email, nonce)
	if err != nil {
		return err
	}
	link := h.Cfg.BackendHost + "/api/auth/verify/" + verificationToken

	// Best effort: a failed mail never rolls back the cached signup, the
	// client can ask for a resend.
	if err := h.Mail.Send(ctx, mailer.VerificationMail(req.Email, link)); err != nil {
		log.Printf("auth: verification mail to %s failed: %v", req.Email, err)
	}

	metrics.AuthEvent("register", "ok")
	return c.JSON(http.StatusCreated, messageResp{
		Success: true,
		Message: fmt.Sprintf("Verification link has been sent to %s", req.Email),
	})
}

// VerifyEmail consumes a verification link and materializes the pending
// signup into a persisted user.  The cache entry is deleted afterwards, so
// replaying the same link fails.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	claims, err := h.Tokens.ParseVerification(c.Param("token"))
	if err != nil {
		metrics.AuthEvent("verify", "invalid_token")
		return apperr.BadRequest(apperr.CodeInvalidToken, "Token is not valid.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pending, ok, err := h.Sessions.GetPendingSignup(ctx, claims.Email)
	if err != nil {
		return err
	}
	// The nonce must match the entry that issued this link: a resend
	// rewrites the nonce, so older links die here.
	if !ok || pending.Email != claims.Email || pending.SessionID != claims.SessionID {
		metrics.AuthEvent("verify", "invalid_token")
		return apperr.BadRequest(apperr.CodeInvalidToken, "Token is not valid.")
	}

	if _, err := h.Users.CreateVerified(ctx, pending.Name, pending.Email, pending.PasswordHash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.BadRequest(apperr.CodeUserAlreadyExists, "User already exists!")
		}
		return err
	}
	if err := h.Sessions.DeletePendingSignup(ctx, claims.Email); err != nil {
		// The user row exists; a lingering cache entry only dies by TTL.
		log.Printf("auth: delete pending signup for %s failed: %v", claims.Email, err)
	}

	metrics.AuthEvent("verify", "ok")
	return c.JSON(http.StatusCreated, messageResp{
		Success: true,
		Message: "Email verified. You can now log in.",
	})
}

// ResendVerification re-issues the verification mail for a pending signup,
// overwriting the cache entry (and its nonce) and refreshing the TTL.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	req.Email = normalizeEmail(req.Email)
	if !validEmail(req.Email) {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return apperr.BadRequest(apperr.CodeUserAlreadyExists, "User already exists!")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	pending, ok, err := h.Sessions.GetPendingSignup(ctx, req.Email)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.BadRequest(apperr.CodeEmailNotFound, "Invalid request")
	}

	nonce, err := utils.RandomHex(signupNonceBytes)
	if err != nil {
		return err
	}
	pending.SessionID = nonce
	if err := h.Sessions.PutPendingSignup(ctx, pending, h.Tokens.VerificationTTL()); err != nil {
		return err
	}

	verificationToken, err := h.Tokens.IssueVerification(req.Email, nonce)
	if err != nil {
		return err
	}
	link := h.Cfg.BackendHost + "/api/auth/verify/" + verificationToken
	if err := h.Mail.Send(ctx, mailer.VerificationMail(req.Email, link)); err != nil {
		log.Printf("auth: verification mail to %s failed: %v", req.Email, err)
	}

	metrics.AuthEvent("resend_verification", "ok")
	return c.JSON(http.StatusCreated, messageResp{
		Success: true,
		Message: fmt.Sprintf("Verification link has been sent to %s", req.Email),
	})
}

// Login verifies credentials, mints a fresh session and returns the
// access/refresh pair bound to it.  Concurrent logins coexist: each gets
// its own session id and cache entry.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	req.Email = normalizeEmail(req.Email)
	if !validEmail(req.Email) || req.Password == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.AuthEvent("login", "user_not_found")
		return apperr.NotFound(apperr.CodeUserNotFound, "User doesn't exist.")
	}
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		metrics.AuthEvent("login", "bad_credentials")
		return apperr.BadRequest(apperr.CodeIncorrectCredentials, "Incorrect credentials.")
	}

	sessionID, err := utils.NewSessionID()
	if err != nil {
		return err
	}
	pair, err := h.issueSession(ctx, u, sessionID)
	if err != nil {
		return err
	}

	metrics.AuthEvent("login", "ok")
	return c.JSON(http.StatusOK, tokenResp{Success: true, Message: pair})
}

// Refresh rotates the token pair for the session carried by the presented
// refresh token.  The refresh guard has already checked signature and
// cache equality; overwriting the cache entry here is what revokes the old
// refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	u := identityFromContext(c)
	sessionID, _ := c.Get(middleware.CtxSessionID).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.issueSession(ctx, u, sessionID)
	if err != nil {
		return err
	}

	metrics.AuthEvent("refresh", "ok")
	return c.JSON(http.StatusOK, tokenResp{Success: true, Message: pair})
}

// Logout deletes the session cache entry, invalidating every refresh token
// bearing this session id.  Already-issued access tokens stay valid until
// their own expiry; that window is the documented trade-off of stateless
// access checks.
func (h *AuthHandler) Logout(c echo.Context) error {
	email, _ := c.Get(middleware.CtxEmail).(string)
	sessionID, _ := c.Get(middleware.CtxSessionID).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	metrics.AuthEvent("logout", "ok")
	return c.JSON(http.StatusOK, messageResp{
		Success: true,
		Message: fmt.Sprintf("%s is logged out.", email),
	})
}

// ForgotPassword mails a reset link.  The token is signed with a key
// derived from the current password hash, so it dies the moment the
// password changes.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	req.Email = normalizeEmail(req.Email)
	if !validEmail(req.Email) {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeUserNotFound,
			fmt.Sprintf("User with email: %s not found.", req.Email))
	}
	if err != nil {
		return err
	}

	resetToken, err := h.Tokens.IssueReset(u.Email, u.PasswordHash)
	if err != nil {
		return err
	}
	link := h.Cfg.BackendHost + "/api/auth/reset-password/" + u.ID + "/" + resetToken
	if err := h.Mail.Send(ctx, mailer.ResetMail(u.Email, link)); err != nil {
		log.Printf("auth: reset mail to %s failed: %v", u.Email, err)
	}

	metrics.AuthEvent("forgot_password", "ok")
	return c.JSON(http.StatusOK, messageResp{
		Success: true,
		Message: fmt.Sprintf("Email has been sent to %s", req.Email),
	})
}

// ResetPassword verifies a reset token against the currently stored hash
// and persists the new password.  No session is issued; the client logs
// in again with the new credentials.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil || len(req.Password) < 8 {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID := c.Param("userId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Unauthorized("Invalid user.")
	}
	if err != nil {
		return err
	}

	// Decoding against the stored hash covers expiry, tampering and
	// "token already used": a consumed token was issued for a hash that
	// no longer exists.
	claims, err := h.Tokens.ParseReset(c.Param("token"), u.PasswordHash)
	if err != nil || claims.Email != u.Email {
		metrics.AuthEvent("reset_password", "invalid_token")
		return apperr.BadRequest(apperr.CodeInvalidToken, "Invalid token")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	metrics.AuthEvent("reset_password", "ok")
	return c.JSON(http.StatusOK, messageResp{
		Success: true,
		Message: "Password has been reset. Please log in.",
	})
}

// Me returns the identity attached by the access guard.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get(middleware.CtxUserID),
		"email":   c.Get(middleware.CtxEmail),
		"role":    c.Get(middleware.CtxRole),
	})
}

// issueSession mints an access/refresh pair for the session and stores the
// refresh token, overwriting whatever the session held before.
func (h *AuthHandler) issueSession(ctx context.Context, u model.User, sessionID string) (tokenPair, error) {
	access, err := h.Tokens.IssueAccess(u.Email, u.ID, u.Role, sessionID)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := h.Tokens.IssueRefresh(u.Email, u.ID, u.Role, sessionID)
	if err != nil {
		return tokenPair{}, err
	}
	if err := h.Sessions.PutSession(ctx, sessionID, refresh, h.Tokens.RefreshTTL()); err != nil {
		return tokenPair{}, err
	}
	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// identityFromContext rebuilds the guard's identity as a model.User for
// token issuance.
func identityFromContext(c echo.Context) model.User {
	email, _ := c.Get(middleware.CtxEmail).(string)
	id, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	return model.User{ID: id, Email: email, Role: role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail is a cheap structural check; real validation happens when the
// verification mail arrives (or doesn't).
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
