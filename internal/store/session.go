// Package store wraps Redis access for the two transient auth data sets:
// pending (unverified) signups and the one live refresh token per session.
// Both are TTL bound and evicted by Redis itself; nothing here polls.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	signupKeyPrefix  = "signup:"
	sessionKeyPrefix = "session:"
)

// PendingSignup is the registration payload cached between register and
// verify.  SessionID is the signup nonce embedded in the verification
// token; a resend overwrites the entry with a fresh nonce, invalidating
// older links.
type PendingSignup struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	SessionID    string `json:"session_id"`
}

// SessionStore is the key-value session cache.  It is constructed once at
// startup with a live Redis client and injected wherever session state is
// read or written.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore wraps an existing Redis client.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// PutPendingSignup stores (or overwrites) the pending signup for an email.
// Overwriting resets the TTL; last write wins, which is exactly the resend
// semantics.
func (s *SessionStore) PutPendingSignup(ctx context.Context, p PendingSignup, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, signupKeyPrefix+p.Email, raw, ttl).Err()
}

// GetPendingSignup returns the pending signup for an email.  The second
// return value is false when no entry exists (expired, consumed or never
// created) — absence is not an error.
func (s *SessionStore) GetPendingSignup(ctx context.Context, email string) (PendingSignup, bool, error) {
	raw, err := s.rdb.Get(ctx, signupKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingSignup{}, false, nil
	}
	if err != nil {
		return PendingSignup{}, false, err
	}
	var p PendingSignup
	if err := json.Unmarshal(raw, &p); err != nil {
		return PendingSignup{}, false, err
	}
	return p, true, nil
}

// DeletePendingSignup removes a pending signup.  Deleting a missing key is
// a no-op.
func (s *SessionStore) DeletePendingSignup(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, signupKeyPrefix+email).Err()
}

// PutSession stores the live refresh token for a session id, resetting the
// TTL.  Rotation is a plain overwrite: the previous token string stops
// matching and is thereby revoked.
func (s *SessionStore) PutSession(ctx context.Context, sessionID, refreshToken string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKeyPrefix+sessionID, refreshToken, ttl).Err()
}

// GetSession returns the refresh token stored for a session id.  The
// second return value is false when the session does not exist.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// DeleteSession removes a session, immediately invalidating any refresh
// token bearing its id.  Deleting a missing key is a no-op.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
