package oauth

import "time"

// Token and code lifetimes.
const (
	// DefaultRefreshTokenTTL is the default refresh token lifetime.
	DefaultRefreshTokenTTL = 90 * 24 * time.Hour

	// DefaultAuthorizationCodeTTL is how long authorization codes are valid.
	DefaultAuthorizationCodeTTL = 10 * time.Minute

	// DefaultAccessTokenTTL is the fallback access token lifetime when the
	// underlying Google token carries no expiry.
	DefaultAccessTokenTTL = 1 * time.Hour

	// DefaultCleanupInterval is how often expired tokens are removed.
	DefaultCleanupInterval = 1 * time.Minute

	// DefaultRateLimitCleanupInterval is how often inactive limiters are removed.
	DefaultRateLimitCleanupInterval = 5 * time.Minute

	// InactiveLimiterCleanupWindow is the idle time after which a per-IP
	// limiter is dropped.
	InactiveLimiterCleanupWindow = 10 * time.Minute

	// TokenRefreshThreshold is how soon before expiry a Google token is
	// proactively refreshed.
	TokenRefreshThreshold = 5 * time.Minute

	// TokenExpiringThreshold is the minimum remaining lifetime (in seconds)
	// before a token is treated as expiring during code exchange.
	TokenExpiringThreshold = 60
)

// Client and security defaults.
const (
	// DefaultMaxClientsPerIP limits registrations per IP address.
	DefaultMaxClientsPerIP = 10

	// DefaultTokenEndpointAuthMethod is the default client auth method.
	DefaultTokenEndpointAuthMethod = "client_secret_basic"
)

// PKCE and token generation constants.
const (
	// MinCodeVerifierLength is the minimum PKCE code_verifier length (RFC 7636).
	MinCodeVerifierLength = 43

	// MaxCodeVerifierLength is the maximum PKCE code_verifier length (RFC 7636).
	MaxCodeVerifierLength = 128

	// ClientIDTokenLength is the byte length of generated client IDs.
	ClientIDTokenLength = 32

	// ClientSecretTokenLength is the byte length of generated client secrets.
	ClientSecretTokenLength = 48

	// AccessTokenLength is the byte length of generated access tokens.
	AccessTokenLength = 48

	// RefreshTokenLength is the byte length of generated refresh tokens.
	RefreshTokenLength = 48

	// StateTokenLength is the byte length of generated state parameters.
	StateTokenLength = 32
)

// Redirect URI validation constants.
var (
	// DangerousSchemes lists URI schemes that are never allowed.
	DangerousSchemes = []string{"javascript", "data", "file", "vbscript", "about"}

	// DefaultRFC3986SchemePattern matches RFC 3986 compliant custom schemes.
	DefaultRFC3986SchemePattern = []string{"^[a-z][a-z0-9+.-]*$"}

	// LoopbackAddresses lists recognized loopback hosts for development.
	LoopbackAddresses = []string{"localhost", "127.0.0.1", "::1", "[::1]"}
)

// Grant and response types.
var (
	// DefaultGrantTypes are the grant types supported by default.
	DefaultGrantTypes = []string{"authorization_code", "refresh_token"}

	// DefaultResponseTypes are the response types supported by default.
	DefaultResponseTypes = []string{"code"}

	// SupportedCodeChallengeMethods are the PKCE methods we advertise.
	// Only S256 is allowed; "plain" violates OAuth 2.1.
	SupportedCodeChallengeMethods = []string{"S256"}

	// SupportedTokenAuthMethods are the supported token endpoint auth methods.
	SupportedTokenAuthMethods = []string{"client_secret_basic", "client_secret_post", "none"}
)
