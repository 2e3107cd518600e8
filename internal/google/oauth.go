package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// cacheDirName is the directory under the user cache dir holding token files
const cacheDirName = "ga4mcp"

// accountNamePattern restricts account names to filesystem-safe identifiers
var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName ensures an account name is safe to use in a file name
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

// getTokenFilePath returns the token file path for an account
func getTokenFilePath(account string) string {
	return filepath.Join(userCacheDir(), cacheDirName, fmt.Sprintf("google-%s.token", account))
}

// HasTokenForAccount checks if a token file exists for the specified account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.ReadFile(getTokenFilePath(account))
	return err == nil
}

// HasToken checks if a token file exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// MigrateDefaultToken moves a legacy single-account token file
// (google.token) to the per-account layout (google-default.token).
// It is idempotent and a no-op when no legacy file exists.
func MigrateDefaultToken() error {
	cacheDir := filepath.Join(userCacheDir(), cacheDirName)
	oldTokenFile := filepath.Join(cacheDir, "google.token")
	newTokenFile := filepath.Join(cacheDir, "google-default.token")

	data, err := os.ReadFile(oldTokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read legacy token file: %w", err)
	}

	if _, err := os.Stat(newTokenFile); err == nil {
		// Per-account file already exists, just drop the legacy one.
		return os.Remove(oldTokenFile)
	}

	if err := os.WriteFile(newTokenFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write migrated token file: %w", err)
	}

	return os.Remove(oldTokenFile)
}

// GetAuthURLForAccount returns the OAuth URL for user authorization of an account
func GetAuthURLForAccount(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	conf, err := getOAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline), nil
}

// GetAuthURL returns the OAuth URL for the default account
func GetAuthURL() (string, error) {
	return GetAuthURLForAccount("default")
}

// SaveTokenForAccount exchanges an authorization code for tokens and saves
// them for the specified account
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	conf, err := getOAuthConfig()
	if err != nil {
		return err
	}

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenFile := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// SaveToken exchanges an authorization code for tokens for the default account
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// GetAuthenticationErrorMessage returns an actionable error message telling
// MCP clients how to authenticate the given account
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("No valid Google OAuth token found for account %q. "+
		"Use the google_get_auth_url tool to obtain an authorization URL, then "+
		"google_save_auth_code with account=%q to store the token.", account, account)
}

// getOAuthConfig returns the OAuth2 configuration for the Analytics APIs.
// Credentials come from the environment so no client secret ships in the
// binary.
func getOAuthConfig() (*oauth2.Config, error) {
	const oob = "urn:ietf:wg:oauth:2.0:oob"

	clientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET must be set")
	}

	redirectURL := os.Getenv("GOOGLE_OAUTH_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = oob
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// GetTokenSourceForAccount returns an OAuth2 token source for the stored
// token of an account. Returns an error if no valid token exists.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	conf, err := getOAuthConfig()
	if err != nil {
		return nil, err
	}

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token for account %s is invalid: %w", account, err)
	}

	return ts, nil
}

// GetTokenSource returns an OAuth2 token source for the default account
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return GetTokenSourceForAccount(ctx, "default")
}

// GetHTTPClientForAccount returns an HTTP client configured with OAuth2
// authentication for an account. When a token provider has been installed
// through SetTokenProvider (HTTP transports with OAuth middleware), tokens
// come from the provider; otherwise they come from the token file.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	var ts oauth2.TokenSource

	if provider := currentTokenProvider(); provider != nil {
		token, err := provider.GetTokenForAccount(ctx, account)
		if err == nil {
			ts = oauth2.StaticTokenSource(token)
		}
	}

	if ts == nil {
		fileTS, err := GetTokenSourceForAccount(ctx, account)
		if err != nil {
			return nil, err
		}
		ts = fileTS
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

// GetHTTPClient returns an authenticated HTTP client for the default account
func GetHTTPClient(ctx context.Context) (*http.Client, error) {
	return GetHTTPClientForAccount(ctx, "default")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
