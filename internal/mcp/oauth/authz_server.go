package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/ga4mcp/internal/logging"
)

// ServeAuthorizationServerMetadata serves the RFC 8414 Authorization
// Server Metadata document.
func (h *Handler) ServeAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := AuthorizationServerMetadata{
		Issuer:                            h.config.Resource,
		AuthorizationEndpoint:             h.config.Resource + "/oauth/authorize",
		TokenEndpoint:                     h.config.Resource + "/oauth/token",
		RegistrationEndpoint:              h.config.Resource + "/oauth/register",
		ScopesSupported:                   h.config.SupportedScopes,
		ResponseTypesSupported:            DefaultResponseTypes,
		GrantTypesSupported:               DefaultGrantTypes,
		TokenEndpointAuthMethodsSupported: SupportedTokenAuthMethods,
		CodeChallengeMethodsSupported:     SupportedCodeChallengeMethods,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode authorization server metadata", "error", err)
	}
}

// ServeDynamicClientRegistration handles RFC 7591 Dynamic Client
// Registration. Registration requires a Bearer token unless public
// registration is explicitly enabled.
func (h *Handler) ServeDynamicClientRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.config.Security.AllowPublicClientRegistration {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.logger.Warn("Client registration rejected: missing authorization")
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.writeError(w, "invalid_token", "Registration access token required", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.writeError(w, "invalid_token", "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if h.config.Security.RegistrationAccessToken == "" {
			h.logger.Error("RegistrationAccessToken not configured but AllowPublicClientRegistration=false")
			h.writeError(w, "server_error", "Registration token not configured", http.StatusInternalServerError)
			return
		}

		if parts[1] != h.config.Security.RegistrationAccessToken {
			h.logger.Warn("Client registration rejected: invalid registration token")
			h.writeError(w, "invalid_token", "Invalid registration access token", http.StatusUnauthorized)
			return
		}
	}

	var req ClientRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid_request", "Failed to parse registration request", http.StatusBadRequest)
		return
	}

	if len(req.RedirectURIs) == 0 {
		h.writeError(w, "invalid_redirect_uri", "At least one redirect_uri is required", http.StatusBadRequest)
		return
	}

	for _, uri := range req.RedirectURIs {
		if err := validateRedirectURI(uri, h.config.Resource, h.config.Security.AllowCustomRedirectSchemes, h.config.Security.AllowedCustomSchemes); err != nil {
			h.writeError(w, "invalid_redirect_uri", err.Error(), http.StatusBadRequest)
			return
		}
	}

	clientIP := getClientIP(r, h.config.RateLimit.TrustProxy)
	if err := h.clientStore.CheckIPLimit(clientIP, h.config.Security.MaxClientsPerIP); err != nil {
		h.logger.Warn("Client registration limit exceeded",
			"client_ip", clientIP,
			"limit", h.config.Security.MaxClientsPerIP)
		h.writeError(w, "invalid_request",
			fmt.Sprintf("Client registration limit exceeded for your IP address (%d max)", h.config.Security.MaxClientsPerIP),
			http.StatusTooManyRequests)
		return
	}

	resp, err := h.clientStore.RegisterClient(&req, clientIP)
	if err != nil {
		h.logger.Error("Failed to register client", "error", err)
		h.writeError(w, "server_error", "Failed to register client", http.StatusInternalServerError)
		return
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ServeAuthorization handles the authorization endpoint by proxying the
// request to Google.
func (h *Handler) ServeAuthorization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.googleConfig == nil {
		h.writeError(w, "server_error", "OAuth proxy not configured", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	clientID := query.Get("client_id")
	redirectURI := query.Get("redirect_uri")
	state := query.Get("state")
	scope := query.Get("scope")
	codeChallenge := query.Get("code_challenge")
	codeChallengeMethod := query.Get("code_challenge_method")
	nonce := query.Get("nonce")

	if clientID == "" {
		h.writeError(w, "invalid_request", "client_id is required", http.StatusBadRequest)
		return
	}

	if redirectURI == "" {
		h.writeError(w, "invalid_request", "redirect_uri is required", http.StatusBadRequest)
		return
	}

	// OAuth 2.1 requires state for CSRF protection.
	if state == "" {
		if !h.config.Security.AllowInsecureAuthWithoutState {
			h.logger.Warn("Authorization request rejected: missing state parameter",
				"client_id", clientID)
			h.writeError(w, "invalid_request", "state parameter is required for CSRF protection", http.StatusBadRequest)
			return
		}
		h.logger.Warn("Authorization request without state parameter, CSRF protection weakened",
			"client_id", clientID)
	}

	if scope != "" {
		if err := h.validateScopes(scope); err != nil {
			h.writeError(w, "invalid_scope", err.Error(), http.StatusBadRequest)
			return
		}
	}

	client, err := h.clientStore.GetClient(clientID)
	if err != nil {
		h.logger.Warn("Invalid client_id", "client_id", clientID, "error", err)
		h.writeError(w, "invalid_client", "Invalid client_id", http.StatusUnauthorized)
		return
	}

	if err := h.clientStore.ValidateRedirectURI(clientID, redirectURI); err != nil {
		h.logger.Warn("Invalid redirect_uri",
			"client_id", clientID,
			"redirect_uri", redirectURI,
			"error", err,
		)
		h.writeError(w, "invalid_request", "redirect_uri not registered for this client", http.StatusBadRequest)
		return
	}

	// OAuth 2.1 requires PKCE for public clients.
	if codeChallenge == "" && client.TokenEndpointAuthMethod == "none" {
		h.writeError(w, "invalid_request", "PKCE is required for public clients", http.StatusBadRequest)
		return
	}

	if codeChallenge != "" {
		if codeChallengeMethod == "" {
			codeChallengeMethod = "plain"
		}
		if codeChallengeMethod != "S256" && codeChallengeMethod != "plain" {
			h.writeError(w, "invalid_request", "Invalid code_challenge_method", http.StatusBadRequest)
			return
		}
	}

	googleState, err := generateSecureToken(StateTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate state", "error", err)
		h.writeError(w, "server_error", "Failed to generate state", http.StatusInternalServerError)
		return
	}

	now := time.Now().Unix()
	authState := &AuthorizationState{
		State:               state,
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		Scope:               scope,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		GoogleState:         googleState,
		CreatedAt:           now,
		ExpiresAt:           now + int64(DefaultAuthorizationCodeTTL.Seconds()),
		Nonce:               nonce,
	}

	if err := h.flowStore.SaveAuthorizationState(authState); err != nil {
		h.logger.Error("Failed to save authorization state", "error", err)
		h.writeError(w, "server_error", "Failed to save state", http.StatusInternalServerError)
		return
	}

	googleAuthURL := h.googleConfig.AuthCodeURL(googleState,
		oauth2.AccessTypeOffline, // request refresh token
		oauth2.ApprovalForce,     // always show consent screen
	)

	h.logger.Info("Redirecting to Google for authorization",
		"client_id", clientID,
		"redirect_uri", redirectURI,
	)

	http.Redirect(w, r, googleAuthURL, http.StatusFound)
}

// ServeGoogleCallback handles the redirect back from Google OAuth.
func (h *Handler) ServeGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	result := ParseCallbackQuery(
		query.Get("code"),
		query.Get("state"),
		query.Get("error"),
		query.Get("error_description"),
		query.Get("error_uri"),
	)

	if err := result.Err(); err != nil {
		if IsSilentAuthError(err) {
			// prompt=none style failure, the client must fall back to
			// interactive login.
			h.logger.Info("Silent authentication failed, interactive login required",
				"error", err)
			h.writeError(w, "interaction_required", err.Error(), http.StatusUnauthorized)
			return
		}
		h.logger.Warn("Google OAuth error", "error", err)
		http.Error(w, fmt.Sprintf("Google OAuth error: %v", err), http.StatusBadRequest)
		return
	}

	googleState := result.State
	code := result.Code

	authState, err := h.flowStore.GetAuthorizationState(googleState)
	if err != nil {
		h.logger.Error("Invalid or expired state", "error", err)
		http.Error(w, "Invalid or expired state", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	googleToken, err := h.googleConfig.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("Failed to exchange code for Google token", "error", err)
		http.Error(w, "Failed to exchange authorization code", http.StatusInternalServerError)
		return
	}

	userInfo, err := h.fetchGoogleUserInfo(ctx, googleToken.AccessToken)
	if err != nil {
		h.logger.Error("Failed to fetch Google user info", "error", err)
		http.Error(w, "Failed to fetch user information", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Google OAuth successful",
		logging.UserHash(userInfo.Email),
		"client_id", authState.ClientID,
	)

	authCode, err := generateSecureToken(StateTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate authorization code", "error", err)
		http.Error(w, "Failed to generate authorization code", http.StatusInternalServerError)
		return
	}

	now := time.Now().Unix()
	authCodeData := &AuthorizationCode{
		Code:                authCode,
		ClientID:            authState.ClientID,
		RedirectURI:         authState.RedirectURI,
		Scope:               authState.Scope,
		CodeChallenge:       authState.CodeChallenge,
		CodeChallengeMethod: authState.CodeChallengeMethod,
		GoogleAccessToken:   googleToken.AccessToken,
		GoogleRefreshToken:  googleToken.RefreshToken,
		GoogleTokenExpiry:   googleToken.Expiry.Unix(),
		UserEmail:           userInfo.Email,
		CreatedAt:           now,
		ExpiresAt:           now + int64(DefaultAuthorizationCodeTTL.Seconds()),
	}

	if err := h.flowStore.SaveAuthorizationCode(authCodeData); err != nil {
		h.logger.Error("Failed to save authorization code", "error", err)
		http.Error(w, "Failed to save authorization code", http.StatusInternalServerError)
		return
	}

	if err := h.store.SaveGoogleUserInfo(userInfo.Email, userInfo); err != nil {
		h.logger.Warn("Failed to save user info", "error", err)
	}

	h.flowStore.DeleteAuthorizationState(googleState)

	redirectURL, err := url.Parse(authState.RedirectURI)
	if err != nil {
		h.logger.Error("Invalid redirect URI", "redirect_uri", authState.RedirectURI, "error", err)
		http.Error(w, "Invalid redirect URI", http.StatusInternalServerError)
		return
	}

	redirectQuery := redirectURL.Query()
	redirectQuery.Set("code", authCode)
	// Only echo state back if the client provided one.
	if authState.State != "" {
		redirectQuery.Set("state", authState.State)
	}
	redirectURL.RawQuery = redirectQuery.Encode()

	h.logger.Info("Redirecting back to MCP client",
		"client_id", authState.ClientID,
	)

	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// ServeToken handles the OAuth token endpoint.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, "invalid_request", "Failed to parse request", http.StatusBadRequest)
		return
	}

	switch grantType := r.FormValue("grant_type"); grantType {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r)
	case "refresh_token":
		h.handleRefreshTokenGrant(w, r)
	default:
		h.writeError(w, "unsupported_grant_type", fmt.Sprintf("Grant type %s not supported", grantType), http.StatusBadRequest)
	}
}

// handleAuthorizationCodeGrant handles the authorization_code grant type.
func (h *Handler) handleAuthorizationCodeGrant(w http.ResponseWriter, r *http.Request) {
	params, oauthErr := h.parseAuthCodeRequest(r)
	if oauthErr != nil {
		h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
		return
	}

	authCode, oauthErr := h.validateAndRetrieveAuthCode(params)
	if oauthErr != nil {
		h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
		return
	}

	clientID := params.ClientID
	if clientID == "" {
		clientID = authCode.ClientID
	}

	if oauthErr := h.validatePKCE(authCode, params.CodeVerifier, clientID); oauthErr != nil {
		h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
		return
	}

	if _, oauthErr := h.authenticateClient(r, clientID); oauthErr != nil {
		h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
		return
	}

	googleToken, oauthErr := h.ensureFreshGoogleToken(r.Context(), authCode)
	if oauthErr != nil {
		h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
		return
	}

	accessToken, err := generateSecureToken(AccessTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate access token", "error", err)
		h.writeError(w, "server_error", "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	if oauthErr := h.storeTokens(authCode, googleToken, accessToken); oauthErr != nil {
		h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
		return
	}

	h.logger.Info("Issued access token",
		"client_id", clientID,
		logging.UserHash(authCode.UserEmail),
		"scope", authCode.Scope)

	expiresIn := googleToken.Expiry.Unix() - time.Now().Unix()
	if expiresIn < 0 {
		expiresIn = int64(DefaultAccessTokenTTL.Seconds())
	}

	tokenResp := TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Scope:       authCode.Scope,
	}

	if refreshToken, err := h.issueRefreshToken(authCode); err == nil && refreshToken != "" {
		tokenResp.RefreshToken = refreshToken
	}

	h.writeTokenResponse(w, tokenResp)
}

// handleRefreshTokenGrant handles the refresh_token grant type with
// OAuth 2.1 refresh token rotation.
func (h *Handler) handleRefreshTokenGrant(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.FormValue("refresh_token")
	clientID := r.FormValue("client_id")

	if refreshToken == "" {
		h.writeError(w, "invalid_request", "refresh_token is required", http.StatusBadRequest)
		return
	}

	userEmail, err := h.store.GetRefreshToken(refreshToken)
	if err != nil {
		h.logger.Warn("Invalid refresh token", "error", err)
		h.writeError(w, "invalid_grant", "Invalid or expired refresh token", http.StatusBadRequest)
		return
	}

	googleToken, err := h.store.GetGoogleToken(userEmail)
	if err != nil {
		h.logger.Warn("No Google token found for refresh",
			logging.UserHash(userEmail),
			"error", err)
		h.writeError(w, "invalid_grant", "User token not found. Please re-authenticate.", http.StatusBadRequest)
		return
	}

	if clientID != "" {
		if _, err := h.clientStore.GetClient(clientID); err != nil {
			h.logger.Warn("Invalid client_id in refresh", "client_id", clientID, "error", err)
			h.writeError(w, "invalid_client", "Invalid client", http.StatusUnauthorized)
			return
		}
	}

	if h.CanRefreshTokens() && googleToken.RefreshToken != "" {
		newToken, refreshErr := refreshGoogleToken(r.Context(), googleToken, h.googleConfig, h.httpClient)
		if refreshErr != nil {
			h.logger.Warn("Failed to refresh Google token",
				logging.UserHash(userEmail),
				"error", refreshErr)
			h.writeError(w, "invalid_grant", "Token refresh failed. Please re-authenticate.", http.StatusBadRequest)
			return
		}
		googleToken = newToken
		if saveErr := h.store.SaveGoogleToken(userEmail, newToken); saveErr != nil {
			h.logger.Warn("Failed to save refreshed Google token",
				logging.UserHash(userEmail),
				"error", saveErr)
		}
	}

	accessToken, err := generateSecureToken(AccessTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate access token", "error", err)
		h.writeError(w, "server_error", "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	expiresIn := int64(DefaultAccessTokenTTL.Seconds())
	if !googleToken.Expiry.IsZero() {
		expiresIn = googleToken.Expiry.Unix() - time.Now().Unix()
		if expiresIn < 0 {
			expiresIn = int64(DefaultAccessTokenTTL.Seconds())
		}
	}

	if err := h.store.SaveTokenWithEmailMapping(userEmail, accessToken, googleToken); err != nil {
		h.logger.Error("Failed to map access token", "error", err)
		h.writeError(w, "server_error", "Failed to store token", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Issued new access token via refresh_token grant",
		logging.UserHash(userEmail))

	tokenResp := TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}

	tokenResp.RefreshToken = h.rotateRefreshToken(refreshToken, userEmail)

	h.writeTokenResponse(w, tokenResp)
}

// rotateRefreshToken implements OAuth 2.1 refresh token rotation. Returns
// the replacement token, or the old token when rotation is disabled or
// the rotation attempt fails.
func (h *Handler) rotateRefreshToken(oldToken, userEmail string) string {
	if h.config.Security.DisableRefreshTokenRotation {
		h.logger.Warn("Refresh token rotation disabled, returning same token",
			logging.UserHash(userEmail))
		return oldToken
	}

	newRefreshToken, err := generateSecureToken(RefreshTokenLength)
	if err != nil {
		h.logger.Warn("Failed to generate rotated refresh token",
			logging.UserHash(userEmail),
			"error", err)
		return oldToken
	}

	refreshTokenExpiresAt := time.Now().Add(h.config.Security.RefreshTokenTTL).Unix()

	h.store.DeleteRefreshToken(oldToken)

	if err := h.store.SaveRefreshToken(newRefreshToken, userEmail, refreshTokenExpiresAt); err != nil {
		h.logger.Warn("Failed to store rotated refresh token",
			logging.UserHash(userEmail),
			"error", err)
		return oldToken
	}

	return newRefreshToken
}

// writeTokenResponse writes a token endpoint success response with the
// cache headers required by RFC 6749.
func (h *Handler) writeTokenResponse(w http.ResponseWriter, resp TokenResponse) {
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// validateScopes validates requested Google API scopes against the
// supported list. Non-Google scopes such as mcp:tools or openid are not
// enforced and pass through.
func (h *Handler) validateScopes(scope string) error {
	if scope == "" {
		return nil
	}

	for _, requested := range strings.Split(scope, " ") {
		requested = strings.TrimSpace(requested)
		if requested == "" {
			continue
		}

		if !strings.HasPrefix(requested, "https://") {
			h.logger.Debug("Ignoring non-Google scope", "scope", requested)
			continue
		}

		found := false
		for _, supported := range h.config.SupportedScopes {
			if requested == supported {
				found = true
				break
			}
		}

		if !found {
			return fmt.Errorf("unsupported Google API scope: %s", requested)
		}
	}

	return nil
}

// validateRedirectURI validates a redirect URI per the OAuth 2.0 Security
// Best Current Practice.
func validateRedirectURI(uri string, serverResource string, allowCustomSchemes bool, allowedSchemes []string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid redirect_uri format: %s", uri)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("redirect_uri must not contain fragments: %s", uri)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("redirect_uri must have a scheme: %s", uri)
	}

	// Custom schemes cover native apps such as myapp://callback.
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		if !allowCustomSchemes {
			return fmt.Errorf("custom redirect_uri schemes not allowed (only http/https permitted)")
		}

		schemeLower := strings.ToLower(parsed.Scheme)
		for _, dangerous := range DangerousSchemes {
			if schemeLower == dangerous {
				return fmt.Errorf("redirect_uri scheme '%s' is not allowed for security reasons", parsed.Scheme)
			}
		}

		if len(allowedSchemes) > 0 {
			schemeValid := false
			for _, pattern := range allowedSchemes {
				matched, matchErr := regexp.MatchString(pattern, schemeLower)
				if matchErr != nil {
					return fmt.Errorf("invalid scheme pattern '%s': %w", pattern, matchErr)
				}
				if matched {
					schemeValid = true
					break
				}
			}
			if !schemeValid {
				return fmt.Errorf("redirect_uri scheme '%s' does not match allowed patterns", parsed.Scheme)
			}
		}

		return nil
	}

	if parsed.Host == "" {
		return fmt.Errorf("http/https redirect_uri must have a host: %s", uri)
	}

	serverURL, err := url.Parse(serverResource)
	if err != nil {
		return fmt.Errorf("cannot validate redirect_uri: invalid server resource")
	}

	isProduction := !isLoopback(serverURL.Hostname())

	// Loopback redirects stay legal in production, they cannot be
	// intercepted remotely.
	if isProduction && !isLoopback(parsed.Hostname()) {
		if parsed.Scheme != "https" {
			return fmt.Errorf("redirect_uri must use HTTPS in production (non-localhost redirects): %s", uri)
		}
	}

	return nil
}

// isLoopback checks if a hostname is a loopback address.
func isLoopback(hostname string) bool {
	hostname = strings.Trim(hostname, "[]")

	for _, loopback := range LoopbackAddresses {
		if hostname == loopback {
			return true
		}
	}

	return strings.HasPrefix(hostname, "127.") || strings.HasPrefix(hostname, "localhost:")
}

// fetchGoogleUserInfo fetches user info from Google's userinfo endpoint.
func (h *Handler) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google userinfo returned status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &userInfo, nil
}
