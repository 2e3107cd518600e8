// Package google provides OAuth2 authentication for Google Analytics APIs
// with support for multiple Google accounts.
//
// # Multi-Account Support
//
// The package supports authenticating with multiple Google accounts
// simultaneously. Each account's token is stored in a separate file named
// google-{account}.token in the user cache directory.
//
// Account names must contain only alphanumeric characters, hyphens, and
// underscores. The default account is named "default".
//
// # Token Storage
//
// Tokens are stored in ~/.cache/ga4mcp/ (or the platform equivalent) with
// 0600 permissions. Each file contains the access token and refresh token
// separated by a space.
//
// Legacy single-account tokens (google.token) are automatically migrated to
// the default account file (google-default.token) on first use.
//
// # Token Providers
//
// For HTTP-based transports, a TokenProvider can be installed with
// SetTokenProvider so that API clients use tokens from authenticated MCP
// sessions instead of token files. When no provider is set, or the provider
// has no token for the account, the file-based flow is used.
//
// # Usage
//
//	// Authenticate the default account
//	url, err := google.GetAuthURL()
//	// ... user visits url, obtains code ...
//	err = google.SaveToken(ctx, code)
//
//	// Authenticate a named account
//	url, err := google.GetAuthURLForAccount("work")
//	err = google.SaveTokenForAccount(ctx, "work", code)
//
//	// Get an HTTP client for API calls
//	client, err := google.GetHTTPClientForAccount(ctx, "work")
package google
