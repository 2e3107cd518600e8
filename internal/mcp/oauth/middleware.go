package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/teemow/ga4mcp/internal/logging"
)

type contextKey string

const (
	userContextKey  contextKey = "oauth_user"
	tokenContextKey contextKey = "google_token"
)

// ValidateGoogleToken is HTTP middleware that validates the Bearer token
// on incoming requests. Tokens issued by this server resolve to a stored
// Google token; raw Google access tokens are validated against Google's
// userinfo endpoint directly.
func (h *Handler) ValidateGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate",
				fmt.Sprintf(`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource"`, h.config.Resource))
			h.writeUnauthorizedError(w, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			h.writeUnauthorizedError(w, "Invalid Authorization header format")
			return
		}

		accessToken := parts[1]

		googleToken := h.GetCachedGoogleToken(accessToken)
		if googleToken == nil {
			googleToken = &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		}

		userInfo, err := h.getUserInfoFromGoogle(r.Context(), googleToken)
		if err != nil {
			h.logger.Warn("Token validation failed", "error", err)
			h.writeUnauthorizedError(w, getActionableErrorMessage(err))
			return
		}

		// Keep the token resolvable by email for the TokenProvider.
		if err := h.store.SaveGoogleToken(userInfo.Email, googleToken); err != nil {
			h.logger.Warn("Failed to cache Google token",
				logging.UserHash(userInfo.Email),
				"error", err)
		}

		ctx := context.WithValue(r.Context(), userContextKey, userInfo)
		ctx = context.WithValue(ctx, tokenContextKey, googleToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalGoogleToken is like ValidateGoogleToken but lets requests
// without credentials through. Used for endpoints that serve both
// authenticated and anonymous traffic.
func (h *Handler) OptionalGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			next.ServeHTTP(w, r)
			return
		}

		accessToken := parts[1]
		googleToken := h.GetCachedGoogleToken(accessToken)
		if googleToken == nil {
			googleToken = &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		}

		userInfo, err := h.getUserInfoFromGoogle(r.Context(), googleToken)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, userInfo)
		ctx = context.WithValue(ctx, tokenContextKey, googleToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getUserInfoFromGoogle validates a token by calling Google's userinfo
// endpoint with it.
func (h *Handler) getUserInfoFromGoogle(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	if userInfo.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}

	return &userInfo, nil
}

// getActionableErrorMessage maps low-level validation errors to messages
// a client can act on.
func getActionableErrorMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "status 401"):
		return "Token is invalid or expired. Please re-authenticate."
	case strings.Contains(msg, "status 403"):
		return "Token lacks required permissions. Check granted scopes."
	case strings.Contains(msg, "status 429"):
		return "Rate limited by Google. Please retry later."
	case strings.Contains(msg, "status 5"):
		return "Google API is temporarily unavailable. Please retry later."
	case strings.Contains(msg, "failed to call"):
		return "Could not reach Google to validate token. Check network connectivity."
	default:
		return "Token validation failed. Please re-authenticate."
	}
}

// ContextWithUserInfo returns a context carrying the authenticated
// Google user. Used by transports that authenticate outside the HTTP
// middleware, and by tests.
func ContextWithUserInfo(ctx context.Context, userInfo *GoogleUserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// GetUserFromContext extracts the authenticated Google user from a
// request context.
func GetUserFromContext(ctx context.Context) (*GoogleUserInfo, bool) {
	userInfo, ok := ctx.Value(userContextKey).(*GoogleUserInfo)
	if !ok || userInfo == nil {
		return nil, false
	}
	return userInfo, true
}

// GetGoogleTokenFromContext extracts the validated Google token from a
// request context.
func GetGoogleTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return token, ok
}

// CacheGoogleToken stores a Google token keyed by the access token string.
func (h *Handler) CacheGoogleToken(accessToken string, token *oauth2.Token) {
	if err := h.store.SaveGoogleToken(accessToken, token); err != nil {
		h.logger.Warn("Failed to cache token", "error", err)
	}
}

// GetCachedGoogleToken returns the stored Google token for an access
// token issued by this server, or nil when unknown.
func (h *Handler) GetCachedGoogleToken(accessToken string) *oauth2.Token {
	token, err := h.store.GetGoogleToken(accessToken)
	if err != nil {
		return nil
	}
	return token
}

func (h *Handler) writeUnauthorizedError(w http.ResponseWriter, description string) {
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            "invalid_token",
		ErrorDescription: description,
	})
}
