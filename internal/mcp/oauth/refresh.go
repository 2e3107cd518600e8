package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/ga4mcp/internal/logging"
)

// refreshGoogleToken exchanges a refresh token for a fresh Google access
// token using the configured OAuth client credentials.
func refreshGoogleToken(ctx context.Context, token *oauth2.Token, config *oauth2.Config, httpClient *http.Client) (*oauth2.Token, error) {
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}

	if config == nil {
		return nil, fmt.Errorf("OAuth config not available for token refresh")
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	newToken, err := config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return newToken, nil
}

// isTokenExpired reports whether the token expires within the given
// threshold. Tokens without an expiry never count as expired.
func isTokenExpired(token *oauth2.Token, threshold time.Duration) bool {
	if token.Expiry.IsZero() {
		return false
	}
	return time.Until(token.Expiry) < threshold
}

// RefreshGoogleTokenIfNeeded refreshes the user's Google token when it
// is close to expiry and saves the result. Returns the current valid
// token either way.
func (h *Handler) RefreshGoogleTokenIfNeeded(ctx context.Context, email string, token *oauth2.Token) (*oauth2.Token, error) {
	if !isTokenExpired(token, TokenRefreshThreshold) {
		return token, nil
	}

	if !h.CanRefreshTokens() || token.RefreshToken == "" {
		return nil, fmt.Errorf("token expired and cannot be refreshed, re-authentication required")
	}

	newToken, err := refreshGoogleToken(ctx, token, h.googleConfig, h.httpClient)
	if err != nil {
		return nil, err
	}

	if err := h.store.SaveGoogleToken(email, newToken); err != nil {
		h.logger.Warn("Failed to save refreshed token",
			logging.UserHash(email),
			"error", err)
	}

	h.logger.Info("Refreshed Google token",
		logging.UserHash(email))

	return newToken, nil
}
