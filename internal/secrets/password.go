// Package secrets generates and fingerprints database account passwords.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const passwordBytes = 16

// Password is an opaque generated secret. It is returned to the caller
// once and never persisted by this toolkit. Logging must use
// Fingerprint, not the value itself.
type Password string

// NewPassword creates a random 32-character hex password.
func NewPassword() Password {
	b := make([]byte, passwordBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return Password(hex.EncodeToString(b))
}

// Fingerprint returns the SHA-256 hex digest of the password, safe to
// write to logs for correlation.
func (p Password) Fingerprint() string {
	return Fingerprint(string(p))
}

// Fingerprint computes a SHA-256 hex hash for audit and log correlation.
func Fingerprint(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("%x", h)
}
