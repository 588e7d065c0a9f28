package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 600_000
	hashKeyLength  = 32
)

// PasswordHasher derives deterministic password hashes with PBKDF2-SHA256
// over an application-wide salt. The stored hash is compared by equality
// during authentication, so the derivation must be stable for a given
// password and salt.
type PasswordHasher struct {
	salt []byte
}

// NewPasswordHasher creates a hasher over the configured application salt.
func NewPasswordHasher(salt string) *PasswordHasher {
	return &PasswordHasher{salt: []byte(salt)}
}

// Hash derives the hex-encoded hash for a password.
func (h *PasswordHasher) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), h.salt, hashIterations, hashKeyLength, sha256.New)
	return hex.EncodeToString(key)
}
