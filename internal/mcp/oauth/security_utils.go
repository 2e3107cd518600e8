package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// hashForLogging returns a short SHA256 digest of a token store key for
// safe logging. User emails are anonymized with logging.UserHash instead.
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}

// generateSecureToken generates a cryptographically secure random token of
// the given byte length, base64url encoded without padding.
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
