package utils

import (
	"crypto/rand" // secure random number generation
	"encoding/hex"
)

// sessionIDBytes is the entropy of a session identifier.  32 random bytes
// hex-encode to 64 characters.
const sessionIDBytes = 32

// NewSessionID returns a cryptographically random session identifier.
// Session ids name the cache entry holding the one live refresh token for
// a login, so they must be unguessable.
func NewSessionID() (string, error) {
	return RandomHex(sessionIDBytes)
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
