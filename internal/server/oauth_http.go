package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/google"
	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/mcp/oauth"
)

// OAuthHTTPServer wraps an MCP server with OAuth 2.1 authentication.
// It implements RFC 9728 Protected Resource Metadata and proxies the
// authorization flow to Google, so MCP clients can authenticate without
// their own Google OAuth credentials.
type OAuthHTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	oauthHandler  *oauth.Handler
	httpServer    *http.Server
	healthChecker *HealthChecker
	metrics       *instrumentation.Metrics
	serverType    string // "sse" or "streamable-http"
}

// NewOAuthHTTPServer creates a new OAuth-enabled HTTP server for MCP.
// Google OAuth credentials are read from GOOGLE_OAUTH_CLIENT_ID and
// GOOGLE_OAUTH_CLIENT_SECRET. The resulting token store is registered as
// the token provider for Analytics API clients, so per-user tokens from
// the OAuth flow are used instead of the token files on disk.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, serverType string, baseURL string, healthChecker *HealthChecker) (*OAuthHTTPServer, error) {
	oauthConfig := &oauth.Config{
		Resource:        baseURL,
		SupportedScopes: google.DefaultOAuthScopes,
		GoogleAuth: oauth.GoogleAuthConfig{
			ClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		},
		RateLimit: oauth.RateLimitConfig{
			Rate:       10,
			Burst:      20,
			TrustProxy: os.Getenv("GA4MCP_TRUST_PROXY") == "true",
		},
		Security: oauth.SecurityConfig{
			RegistrationAccessToken:       os.Getenv("GA4MCP_REGISTRATION_TOKEN"),
			AllowPublicClientRegistration: os.Getenv("GA4MCP_REGISTRATION_TOKEN") == "",
		},
		CleanupInterval: 1 * time.Minute,
	}

	oauthHandler, err := oauth.NewHandler(oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	// Analytics clients resolve tokens through the OAuth store from here on.
	google.SetTokenProvider(oauth.NewTokenProvider(oauthHandler.GetStore()))

	return &OAuthHTTPServer{
		mcpServer:     mcpServer,
		oauthHandler:  oauthHandler,
		healthChecker: healthChecker,
		serverType:    serverType,
	}, nil
}

// Start starts the OAuth-enabled HTTP server
func (s *OAuthHTTPServer) Start(addr string) error {
	config := s.oauthHandler.GetConfig()
	if err := validateHTTPSRequirement(config.Resource); err != nil {
		return err
	}

	mux := http.NewServeMux()

	rl := s.oauthHandler.RateLimitMiddleware

	// Discovery metadata (RFC 9728 + RFC 8414)
	mux.Handle("/.well-known/oauth-protected-resource",
		rl(http.HandlerFunc(s.oauthHandler.ServeProtectedResourceMetadata)))
	mux.Handle("/.well-known/oauth-authorization-server",
		rl(http.HandlerFunc(s.oauthHandler.ServeAuthorizationServerMetadata)))

	// Authorization server endpoints
	mux.Handle("/oauth/register", rl(http.HandlerFunc(s.oauthHandler.ServeDynamicClientRegistration)))
	mux.Handle("/oauth/authorize", rl(http.HandlerFunc(s.oauthHandler.ServeAuthorization)))
	mux.Handle("/oauth/google/callback", rl(http.HandlerFunc(s.oauthHandler.ServeGoogleCallback)))
	mux.Handle("/oauth/token", rl(http.HandlerFunc(s.oauthHandler.ServeToken)))
	mux.Handle("/oauth/revoke", rl(s.oauthHandler.ValidateGoogleToken(http.HandlerFunc(s.oauthHandler.ServeRevoke))))

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	// MCP endpoints by transport, behind rate limiting and token validation
	switch s.serverType {
	case "sse":
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)

		mux.Handle("/sse", rl(s.oauthInstrumentationWrapper(s.oauthHandler.ValidateGoogleToken(sseServer))))
		mux.Handle("/message", rl(s.oauthInstrumentationWrapper(s.oauthHandler.ValidateGoogleToken(sseServer))))

	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)

		mux.Handle("/mcp", rl(s.oauthInstrumentationWrapper(s.oauthHandler.ValidateGoogleToken(httpServer))))

	default:
		return fmt.Errorf("unsupported server type: %s", s.serverType)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.instrumentationMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// GetOAuthHandler returns the OAuth handler for testing or direct access
func (s *OAuthHTTPServer) GetOAuthHandler() *oauth.Handler {
	return s.oauthHandler
}

// SetMetrics enables HTTP and OAuth metrics recording.
func (s *OAuthHTTPServer) SetMetrics(metrics *instrumentation.Metrics) {
	s.metrics = metrics
}

// responseWriter captures the status code written to the response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// instrumentationMiddleware records request count and duration for every
// HTTP request. A no-op when metrics are not configured.
func (s *OAuthHTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// oauthInstrumentationWrapper records authentication outcomes on the MCP
// endpoints. A 401 means the Bearer token was rejected.
func (s *OAuthHTTPServer) oauthInstrumentationWrapper(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		result := instrumentation.OAuthResultSuccess
		if rw.statusCode == http.StatusUnauthorized {
			result = instrumentation.OAuthResultFailure
		}
		s.metrics.RecordOAuthAuth(r.Context(), result)
	})
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance.
// HTTP is only allowed for loopback addresses.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
