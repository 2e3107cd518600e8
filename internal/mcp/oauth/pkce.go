package oauth

import (
	"crypto/sha256"
	"encoding/base64"
)

// GenerateCodeVerifier generates a random PKCE code verifier (RFC 7636).
// 32 random bytes encode to 43 characters, the RFC minimum.
func GenerateCodeVerifier() (string, error) {
	return generateSecureToken(32)
}

// GenerateCodeChallenge derives the S256 code challenge from a verifier:
// BASE64URL(SHA256(ASCII(code_verifier))).
func GenerateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// ValidateCodeChallenge reports whether the code verifier matches the code
// challenge using the given method. Only S256 and plain are recognized;
// an empty method falls back to plain.
func ValidateCodeChallenge(verifier, challenge, method string) bool {
	switch method {
	case "S256":
		return GenerateCodeChallenge(verifier) == challenge
	case "plain", "":
		return verifier == challenge
	default:
		return false
	}
}
