package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/ga4mcp/internal/logging"
)

// authCodeRequest holds the parsed parameters of an authorization_code
// grant request.
type authCodeRequest struct {
	Code         string
	RedirectURI  string
	ClientID     string
	CodeVerifier string
}

func (h *Handler) parseAuthCodeRequest(r *http.Request) (*authCodeRequest, *OAuthError) {
	params := &authCodeRequest{
		Code:         r.FormValue("code"),
		RedirectURI:  r.FormValue("redirect_uri"),
		ClientID:     r.FormValue("client_id"),
		CodeVerifier: r.FormValue("code_verifier"),
	}

	if params.Code == "" {
		return nil, ErrInvalidRequest("code is required")
	}

	return params, nil
}

// validateAndRetrieveAuthCode retrieves the authorization code from the
// flow store (consuming it) and checks it against the request.
func (h *Handler) validateAndRetrieveAuthCode(params *authCodeRequest) (*AuthorizationCode, *OAuthError) {
	authCode, err := h.flowStore.GetAuthorizationCode(params.Code)
	if err != nil {
		h.logger.Warn("Invalid or expired authorization code", "error", err)
		return nil, ErrInvalidGrant("Invalid or expired authorization code")
	}

	// Some MCP clients omit client_id on the token request. The code
	// itself is bound to the client from the authorization request.
	if params.ClientID != "" && params.ClientID != authCode.ClientID {
		h.logger.Warn("Client ID mismatch",
			"expected", authCode.ClientID,
			"got", params.ClientID)
		return nil, ErrInvalidGrant("Authorization code was issued to a different client")
	}

	if params.RedirectURI != "" && params.RedirectURI != authCode.RedirectURI {
		h.logger.Warn("Redirect URI mismatch",
			"expected", authCode.RedirectURI,
			"got", params.RedirectURI)
		return nil, ErrInvalidGrant("redirect_uri does not match authorization request")
	}

	return authCode, nil
}

// validatePKCE verifies the PKCE code_verifier against the challenge
// stored with the authorization code.
func (h *Handler) validatePKCE(authCode *AuthorizationCode, codeVerifier, clientID string) *OAuthError {
	if authCode.CodeChallenge == "" {
		return nil
	}

	if codeVerifier == "" {
		h.logger.Warn("Missing code_verifier for PKCE flow", "client_id", clientID)
		return ErrInvalidGrant("code_verifier is required")
	}

	if len(codeVerifier) < MinCodeVerifierLength || len(codeVerifier) > MaxCodeVerifierLength {
		h.logger.Warn("Invalid code_verifier length",
			"client_id", clientID,
			"length", len(codeVerifier))
		return ErrInvalidGrant("code_verifier has invalid length")
	}

	var computed string
	switch authCode.CodeChallengeMethod {
	case "S256":
		hash := sha256.Sum256([]byte(codeVerifier))
		computed = base64.RawURLEncoding.EncodeToString(hash[:])
	default:
		computed = codeVerifier
	}

	if computed != authCode.CodeChallenge {
		h.logger.Warn("PKCE verification failed", "client_id", clientID)
		return ErrInvalidGrant("PKCE verification failed")
	}

	return nil
}

// authenticateClient authenticates a confidential client via
// client_secret_post or client_secret_basic. Public clients (auth
// method "none") pass through, they are protected by PKCE.
func (h *Handler) authenticateClient(r *http.Request, clientID string) (*RegisteredClient, *OAuthError) {
	client, err := h.clientStore.GetClient(clientID)
	if err != nil {
		h.logger.Warn("Unknown client", "client_id", clientID, "error", err)
		return nil, ErrInvalidClient("Unknown client")
	}

	if client.TokenEndpointAuthMethod == "none" {
		return client, nil
	}

	clientSecret := r.FormValue("client_secret")
	if clientSecret == "" {
		if username, password, ok := r.BasicAuth(); ok {
			if username != clientID {
				h.logger.Warn("Basic auth username does not match client_id",
					"client_id", clientID)
				return nil, ErrInvalidClient("Client authentication failed")
			}
			clientSecret = password
		}
	}

	if clientSecret == "" {
		h.logger.Warn("Missing client credentials", "client_id", clientID)
		return nil, ErrInvalidClient("Client authentication required")
	}

	if err := h.clientStore.ValidateClientSecret(clientID, clientSecret); err != nil {
		h.logger.Warn("Client authentication failed", "client_id", clientID, "error", err)
		return nil, ErrInvalidClient("Client authentication failed")
	}

	return client, nil
}

// ensureFreshGoogleToken builds the Google token carried by the
// authorization code and refreshes it when it is about to expire.
func (h *Handler) ensureFreshGoogleToken(ctx context.Context, authCode *AuthorizationCode) (*oauth2.Token, *OAuthError) {
	googleToken := &oauth2.Token{
		AccessToken:  authCode.GoogleAccessToken,
		RefreshToken: authCode.GoogleRefreshToken,
		Expiry:       time.Unix(authCode.GoogleTokenExpiry, 0),
		TokenType:    "Bearer",
	}

	if time.Until(googleToken.Expiry) >= time.Duration(TokenExpiringThreshold)*time.Second {
		return googleToken, nil
	}

	if !h.CanRefreshTokens() || googleToken.RefreshToken == "" {
		h.logger.Warn("Google token expiring and cannot be refreshed",
			logging.UserHash(authCode.UserEmail))
		return nil, ErrInvalidGrant("Google token expired. Please re-authenticate.")
	}

	refreshed, err := refreshGoogleToken(ctx, googleToken, h.googleConfig, h.httpClient)
	if err != nil {
		h.logger.Warn("Failed to refresh Google token during grant",
			logging.UserHash(authCode.UserEmail),
			"error", err)
		return nil, ErrInvalidGrant("Token refresh failed. Please re-authenticate.")
	}

	return refreshed, nil
}

// storeTokens saves the Google token keyed by both user email and the
// issued access token so the middleware can resolve either.
func (h *Handler) storeTokens(authCode *AuthorizationCode, googleToken *oauth2.Token, accessToken string) *OAuthError {
	if err := h.store.SaveTokenWithEmailMapping(authCode.UserEmail, accessToken, googleToken); err != nil {
		h.logger.Error("Failed to store tokens",
			logging.UserHash(authCode.UserEmail),
			"error", err)
		return ErrServerError("Failed to store token")
	}

	return nil
}

// issueRefreshToken issues a proxy refresh token when the underlying
// Google token is refreshable. Returns an empty string when no refresh
// token can be issued.
func (h *Handler) issueRefreshToken(authCode *AuthorizationCode) (string, error) {
	if authCode.GoogleRefreshToken == "" {
		return "", nil
	}

	refreshToken, err := generateSecureToken(RefreshTokenLength)
	if err != nil {
		h.logger.Warn("Failed to generate refresh token", "error", err)
		return "", err
	}

	expiresAt := time.Now().Add(h.config.Security.RefreshTokenTTL).Unix()
	if err := h.store.SaveRefreshToken(refreshToken, authCode.UserEmail, expiresAt); err != nil {
		h.logger.Warn("Failed to save refresh token", "error", err)
		return "", err
	}

	return refreshToken, nil
}
