// Package token issues and verifies the four signed token kinds used by the
// auth flows: email verification, access, refresh and password reset.  All
// tokens are HS256 JWTs.  Verification, access and refresh tokens each use
// their own static secret and TTL.  Reset tokens are signed with a key
// derived from the verification secret and the user's *current* password
// hash, so the moment the password changes every outstanding reset token
// becomes unverifiable without any revocation bookkeeping.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/ecommerce-backend/internal/config"
)

// ErrInvalidToken is returned for malformed tokens, bad signatures and
// claim mismatches.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when a token's exp claim has elapsed.
var ErrExpiredToken = errors.New("token expired")

// Claims is the claim set embedded in access and refresh tokens.
// Verification tokens carry only Email and SessionID (the signup nonce);
// reset tokens carry only Email.
type Claims struct {
	Email     string `json:"email"`
	UserID    string `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and parses tokens.  It is constructed once at startup and
// injected into handlers and middleware.
type Service struct {
	verificationSecret []byte
	accessSecret       []byte
	refreshSecret      []byte

	verificationTTL time.Duration
	accessTTL       time.Duration
	refreshTTL      time.Duration
}

// NewService builds a Service from configuration.
func NewService(cfg config.Config) *Service {
	return &Service{
		verificationSecret: []byte(cfg.VerificationSecret),
		accessSecret:       []byte(cfg.AccessSecret),
		refreshSecret:      []byte(cfg.RefreshSecret),
		verificationTTL:    cfg.VerificationTTL,
		accessTTL:          cfg.AccessTTL,
		refreshTTL:         cfg.RefreshTTL,
	}
}

// AccessTTL reports the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.  Session cache
// entries use the same TTL so a session cannot outlive its token.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// VerificationTTL reports the configured verification token lifetime.
func (s *Service) VerificationTTL() time.Duration { return s.verificationTTL }

// IssueAccess signs a short-lived access token bound to a session.
func (s *Service) IssueAccess(email, userID, role, sessionID string) (string, error) {
	return s.sign(Claims{Email: email, UserID: userID, Role: role, SessionID: sessionID},
		s.accessSecret, s.accessTTL)
}

// IssueRefresh signs a refresh token bound to a session.  A refresh token
// is only usable while the session cache still holds this exact string.
func (s *Service) IssueRefresh(email, userID, role, sessionID string) (string, error) {
	return s.sign(Claims{Email: email, UserID: userID, Role: role, SessionID: sessionID},
		s.refreshSecret, s.refreshTTL)
}

// IssueVerification signs an email verification token.  The nonce travels
// in the session_id claim and must match the pending signup entry, which
// invalidates stale links after a resend.
func (s *Service) IssueVerification(email, nonce string) (string, error) {
	return s.sign(Claims{Email: email, SessionID: nonce}, s.verificationSecret, s.verificationTTL)
}

// IssueReset signs a password reset token keyed to the current password
// hash.  Shares the verification TTL.
func (s *Service) IssueReset(email, passwordHash string) (string, error) {
	return s.sign(Claims{Email: email}, s.resetSecret(passwordHash), s.verificationTTL)
}

// ParseAccess verifies an access token signature and expiry.
func (s *Service) ParseAccess(raw string) (*Claims, error) {
	return s.parse(raw, s.accessSecret)
}

// ParseRefresh verifies a refresh token signature and expiry.  Callers
// must additionally compare the raw string against the session cache.
func (s *Service) ParseRefresh(raw string) (*Claims, error) {
	return s.parse(raw, s.refreshSecret)
}

// ParseVerification verifies an email verification token.
func (s *Service) ParseVerification(raw string) (*Claims, error) {
	return s.parse(raw, s.verificationSecret)
}

// ParseReset verifies a reset token against the stored password hash.  If
// the password changed since issuance the derived key differs and the
// signature check fails, which is what makes reset tokens single-use.
func (s *Service) ParseReset(raw, passwordHash string) (*Claims, error) {
	return s.parse(raw, s.resetSecret(passwordHash))
}

// resetSecret derives the reset signing key as HMAC(base, passwordHash).
// A keyed MAC avoids the secret-mixing weaknesses of plain concatenation.
func (s *Service) resetSecret(passwordHash string) []byte {
	mac := hmac.New(sha256.New, s.verificationSecret)
	mac.Write([]byte(passwordHash))
	return mac.Sum(nil)
}

func (s *Service) sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (s *Service) parse(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
