package oauth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"

	"github.com/teemow/ga4mcp/internal/google"
	"github.com/teemow/ga4mcp/internal/logging"
)

// Handler implements the OAuth 2.1 endpoints for the MCP server. It acts
// as both an authorization server (proxying to Google) and a resource
// server (validating Bearer tokens on MCP requests).
type Handler struct {
	config          *Config
	store           *Store
	clientStore     *ClientStore
	flowStore       *FlowStore
	rateLimiter     *RateLimiter // per IP
	userRateLimiter *RateLimiter // per authenticated user
	googleConfig    *oauth2.Config
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewHandler creates a new OAuth handler.
func NewHandler(config *Config) (*Handler, error) {
	if config.Resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	parsedURL, err := url.Parse(config.Resource)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URL: %w", err)
	}

	// HTTP is only acceptable for loopback development setups.
	if parsedURL.Scheme != "https" && !isLoopback(parsedURL.Hostname()) {
		return nil, fmt.Errorf("resource must use HTTPS in production (got %s://)", parsedURL.Scheme)
	}

	if len(config.SupportedScopes) == 0 {
		config.SupportedScopes = google.DefaultOAuthScopes
	}

	if config.CleanupInterval == 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.Security.RefreshTokenTTL == 0 {
		config.Security.RefreshTokenTTL = DefaultRefreshTokenTTL
	}

	if config.Security.MaxClientsPerIP == 0 {
		config.Security.MaxClientsPerIP = DefaultMaxClientsPerIP
	}

	if config.Security.AllowedCustomSchemes == nil {
		config.Security.AllowCustomRedirectSchemes = true
		config.Security.AllowedCustomSchemes = DefaultRFC3986SchemePattern
	}

	if config.Security.AllowInsecureAuthWithoutState {
		logger.Warn("SECURITY WARNING: state parameter is optional, CSRF protection weakened",
			"recommendation", "set Security.AllowInsecureAuthWithoutState=false for production")
	}
	if config.Security.DisableRefreshTokenRotation {
		logger.Warn("SECURITY WARNING: refresh token rotation is disabled",
			"recommendation", "set Security.DisableRefreshTokenRotation=false for production")
	}
	if config.Security.AllowPublicClientRegistration {
		logger.Warn("SECURITY WARNING: public client registration is enabled",
			"recommendation", "set Security.AllowPublicClientRegistration=false and use RegistrationAccessToken")
	}

	var rateLimiter *RateLimiter
	if config.RateLimit.Rate > 0 {
		burst := config.RateLimit.Burst
		if burst == 0 {
			burst = config.RateLimit.Rate * 2
		}
		rateLimiter = NewRateLimiter(config.RateLimit.Rate, burst, config.RateLimit.TrustProxy, config.RateLimit.CleanupInterval, logger)
		logger.Info("IP-based rate limiting enabled",
			"rate", config.RateLimit.Rate,
			"burst", burst)
	}

	var userRateLimiter *RateLimiter
	if config.RateLimit.UserRate > 0 {
		burst := config.RateLimit.UserBurst
		if burst == 0 {
			burst = config.RateLimit.UserRate * 2
		}
		// Keyed by email, so proxy headers are irrelevant.
		userRateLimiter = NewRateLimiter(config.RateLimit.UserRate, burst, false, config.RateLimit.CleanupInterval, logger)
		logger.Info("User-based rate limiting enabled",
			"rate", config.RateLimit.UserRate,
			"burst", burst)
	}

	var googleConfig *oauth2.Config
	if config.GoogleAuth.ClientID != "" && config.GoogleAuth.ClientSecret != "" {
		redirectURL := config.GoogleAuth.RedirectURL
		if redirectURL == "" {
			redirectURL = config.Resource + "/oauth/google/callback"
		}

		googleConfig = &oauth2.Config{
			ClientID:     config.GoogleAuth.ClientID,
			ClientSecret: config.GoogleAuth.ClientSecret,
			Endpoint:     oauth2google.Endpoint,
			Scopes:       config.SupportedScopes,
			RedirectURL:  redirectURL,
		}
		logger.Info("OAuth proxy mode enabled with Google credentials",
			"redirect_url", redirectURL)
	} else {
		logger.Warn("OAuth proxy disabled: Google OAuth credentials not provided")
	}

	store := NewStoreWithInterval(config.CleanupInterval)
	store.SetLogger(logger)

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &Handler{
		config:          config,
		store:           store,
		clientStore:     NewClientStore(logger),
		flowStore:       NewFlowStore(logger),
		rateLimiter:     rateLimiter,
		userRateLimiter: userRateLimiter,
		googleConfig:    googleConfig,
		httpClient:      httpClient,
		logger:          logger,
	}, nil
}

// GetStore returns the underlying token store.
func (h *Handler) GetStore() *Store {
	return h.store
}

// GetConfig returns the OAuth configuration.
func (h *Handler) GetConfig() *Config {
	return h.config
}

// CanRefreshTokens reports whether the handler can refresh Google tokens.
func (h *Handler) CanRefreshTokens() bool {
	return h.googleConfig != nil && h.googleConfig.ClientID != ""
}

// ServeProtectedResourceMetadata serves the RFC 9728 Protected Resource
// Metadata document. MCP clients hit this after a 401 to discover the
// authorization server, which in proxy mode is this server itself.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := ProtectedResourceMetadata{
		Resource: h.config.Resource,
		AuthorizationServers: []string{
			h.config.Resource,
		},
		BearerMethodsSupported: []string{
			"header",
		},
		ScopesSupported: h.config.SupportedScopes,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode metadata", "error", err)
	}
}

// setSecurityHeaders sets standard security headers on HTTP responses.
func (h *Handler) setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-XSS-Protection", "1; mode=block")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")

	if parsedURL, err := url.Parse(h.config.Resource); err == nil && parsedURL.Scheme == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
}

// writeError writes an OAuth error response.
func (h *Handler) writeError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	h.logger.Debug("OAuth error", "code", errorCode, "description", description, "status", statusCode)
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// RevokeToken revokes a user's Google token at Google and removes it from
// the store, forcing re-authentication.
func (h *Handler) RevokeToken(email string) error {
	h.logger.Info("Revoking token", logging.UserHash(email))

	token, err := h.store.GetGoogleToken(email)
	if err == nil && token != nil && token.AccessToken != "" {
		data := url.Values{}
		data.Set("token", token.AccessToken)

		resp, revokeErr := h.httpClient.PostForm("https://oauth2.googleapis.com/revoke", data)
		if revokeErr != nil {
			// Local deletion still applies even when Google is unreachable.
			h.logger.Warn("Failed to revoke token at Google",
				logging.UserHash(email),
				"error", revokeErr)
		} else {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				h.logger.Warn("Google token revocation returned non-OK status",
					logging.UserHash(email),
					"status", resp.StatusCode)
			}
		}
	}

	return h.store.DeleteGoogleToken(email)
}

// ServeRevoke handles token revocation requests.
// POST /oauth/revoke with {"email": "user@example.com"}
func (h *Handler) ServeRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		h.writeError(w, "invalid_request", "Email is required", http.StatusBadRequest)
		return
	}

	if err := h.RevokeToken(req.Email); err != nil {
		h.writeError(w, "server_error", fmt.Sprintf("Failed to revoke token: %v", err), http.StatusInternalServerError)
		return
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}
