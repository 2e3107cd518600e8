package oauth

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds the OAuth handler configuration.
type Config struct {
	// Resource is the MCP server resource identifier for RFC 8707.
	// This should be the base URL of the MCP server.
	Resource string

	// SupportedScopes are all available Google API scopes.
	SupportedScopes []string

	// GoogleAuth holds the Google OAuth proxy credentials.
	GoogleAuth GoogleAuthConfig

	// RateLimit configures request rate limiting.
	RateLimit RateLimitConfig

	// Security holds OAuth security settings (secure by default).
	Security SecurityConfig

	// CleanupInterval is how often expired tokens are removed.
	// Default: 1 minute.
	CleanupInterval time.Duration

	// Logger for structured logging. Uses slog.Default when nil.
	Logger *slog.Logger

	// HTTPClient is a custom HTTP client for OAuth requests.
	// Uses a 30 second timeout client when nil.
	HTTPClient *http.Client
}

// GoogleAuthConfig holds Google OAuth proxy configuration.
type GoogleAuthConfig struct {
	// ClientID is the Google OAuth client ID. Required for proxy mode.
	ClientID string

	// ClientSecret is the Google OAuth client secret. Required for proxy mode.
	ClientSecret string

	// RedirectURL is where Google redirects after user authentication.
	// Default: {Resource}/oauth/google/callback.
	RedirectURL string
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// Rate is requests per second allowed per IP (0 = no limit).
	Rate int

	// Burst is the maximum burst size per IP.
	Burst int

	// CleanupInterval is how often inactive limiters are removed.
	// Default: 5 minutes.
	CleanupInterval time.Duration

	// UserRate is requests per second per authenticated user (0 = no limit).
	// Applied in addition to IP-based limiting.
	UserRate int

	// UserBurst is the maximum burst size per authenticated user.
	UserBurst int

	// TrustProxy enables X-Forwarded-For and X-Real-IP handling.
	// Only set to true when the server is behind a trusted proxy.
	TrustProxy bool
}

// SecurityConfig holds OAuth security settings. The zero value is the
// secure configuration; every field that weakens security must be set
// explicitly.
type SecurityConfig struct {
	// AllowInsecureAuthWithoutState permits authorization requests without
	// a state parameter. Weakens CSRF protection, not recommended.
	AllowInsecureAuthWithoutState bool

	// DisableRefreshTokenRotation disables OAuth 2.1 refresh token rotation.
	// A stolen refresh token stays valid indefinitely without rotation.
	DisableRefreshTokenRotation bool

	// AllowPublicClientRegistration permits unauthenticated dynamic client
	// registration. Leaves the server open to registration flooding.
	AllowPublicClientRegistration bool

	// RegistrationAccessToken is the Bearer token required for client
	// registration when AllowPublicClientRegistration is false.
	RegistrationAccessToken string

	// RefreshTokenTTL is the time-to-live for refresh tokens.
	// Default: 90 days.
	RefreshTokenTTL time.Duration

	// MaxClientsPerIP limits client registrations per IP (0 = no limit).
	// Default: 10.
	MaxClientsPerIP int

	// AllowCustomRedirectSchemes permits non-http(s) redirect URIs such as
	// myapp:// for native clients. Validated against AllowedCustomSchemes.
	AllowCustomRedirectSchemes bool

	// AllowedCustomSchemes is a list of regex patterns for custom schemes.
	// Default: RFC 3986 compliant scheme names.
	AllowedCustomSchemes []string
}
