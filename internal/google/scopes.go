package google

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP
// functionality. These scopes are used consistently across the application
// for OAuth configurations.
//
// The scopes provide access to:
//   - Google Analytics: read-only reporting, metadata, and admin listing
//   - OpenID Connect: user identification for the OAuth proxy
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Analytics scope (covers the Data API and read-only Admin API)
	"https://www.googleapis.com/auth/analytics.readonly",
}
