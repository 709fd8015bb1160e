package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-backend/internal/config"
)

func testService() *Service {
	return NewService(config.Config{
		VerificationSecret: "verification-secret",
		VerificationTTL:    10 * time.Minute,
		AccessSecret:       "access-secret",
		AccessTTL:          15 * time.Minute,
		RefreshSecret:      "refresh-secret",
		RefreshTTL:         24 * time.Hour,
	})
}

func TestAccessRoundTrip(t *testing.T) {
	s := testService()

	raw, err := s.IssueAccess("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	claims, err := s.ParseAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestKindsDoNotCross(t *testing.T) {
	s := testService()

	access, err := s.IssueAccess("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)
	refresh, err := s.IssueRefresh("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	// Each kind has its own secret; presenting one where the other is
	// expected must fail.
	_, err = s.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	s := NewService(config.Config{
		AccessSecret: "access-secret",
		AccessTTL:    -time.Minute,
	})

	raw, err := s.IssueAccess("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	_, err = s.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGarbageToken(t *testing.T) {
	s := testService()
	_, err := s.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationCarriesNonce(t *testing.T) {
	s := testService()

	raw, err := s.IssueVerification("a@b.com", "nonce-123")
	require.NoError(t, err)

	claims, err := s.ParseVerification(raw)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "nonce-123", claims.SessionID)
	assert.Empty(t, claims.UserID)
}

func TestResetTokenBoundToPasswordHash(t *testing.T) {
	s := testService()

	raw, err := s.IssueReset("a@b.com", "hash-before")
	require.NoError(t, err)

	claims, err := s.ParseReset(raw, "hash-before")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)

	// Once the password hash changes the derived signing key changes too,
	// so the same token stops verifying.
	_, err = s.ParseReset(raw, "hash-after")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedToken(t *testing.T) {
	s := testService()

	raw, err := s.IssueAccess("a@b.com", "user-1", "CUSTOMER", "sess-1")
	require.NoError(t, err)

	_, err = s.ParseAccess(raw[:len(raw)-2] + "xx")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
