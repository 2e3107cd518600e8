package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/prompts"
	"github.com/teemow/ga4mcp/internal/resources"
	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/tools/analytics_tools"
	"github.com/teemow/ga4mcp/internal/tools/google_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		baseURL            string
		readOnly           bool
		googleClientID     string
		googleClientSecret string
		metricsEnabled     bool
		metricsAddr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Analytics
tools, resources, and prompts for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events transport
  - streamable-http: Streamable HTTP transport

OAuth Configuration:
  HTTP Transports (sse, streamable-http):
    Base URL (required for deployed instances):
      --base-url https://your-domain.com OR BASE_URL env var
      Auto-detected for localhost (development only)

    Google OAuth app (required):
      --google-client-id and --google-client-secret flags
      OR GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET env vars
      Clients authenticate through the built-in OAuth 2.1 proxy.

  STDIO Transport:
    Tokens come from local token files managed with the
    google_get_auth_url and google_save_auth_code tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment fallbacks for flags that were not set explicitly
			if !cmd.Flags().Changed("http-addr") {
				if port := os.Getenv("PORT"); port != "" {
					httpAddr = ":" + port
				}
			}
			if baseURL == "" {
				baseURL = os.Getenv("BASE_URL")
			}
			if !cmd.Flags().Changed("read-only") && os.Getenv("GA4MCP_READ_ONLY") == "false" {
				readOnly = false
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "false" {
				metricsEnabled = false
			}

			// The OAuth HTTP server reads the Google OAuth app from the
			// environment, so flags are exported for it here.
			if googleClientID != "" {
				os.Setenv("GOOGLE_OAUTH_CLIENT_ID", googleClientID)
			}
			if googleClientSecret != "" {
				os.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", googleClientSecret)
			}

			return runServe(transport, debugMode, httpAddr, baseURL, readOnly, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports). Can also use PORT env var.")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth (HTTP transports only). Required for deployed instances. Can also use BASE_URL env var. Example: https://mcp.example.com")
	cmd.Flags().BoolVar(&readOnly, "read-only", true, "Run in read-only mode. Can also use GA4MCP_READ_ONLY env var.")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID (HTTP transports only). Can also use GOOGLE_OAUTH_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret (HTTP transports only). Can also use GOOGLE_OAUTH_CLIENT_SECRET env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr, baseURL string, readOnly bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if debugMode {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
		log.Printf("Metrics server started on %s", metricsServer.Addr())
	}

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("ga4mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
		mcpserver.WithPromptCapabilities(false),
	)

	// Register all tools, resources, and prompts
	if err := registerAll(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "sse", "streamable-http":
		fmt.Printf("Starting ga4mcp MCP server with %s transport...\n", transport)
		return runHTTPServer(shutdownCtx, mcpSrv, serverContext, transport, httpAddr, baseURL, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAll registers all MCP tools, resources, and prompts
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Analytics tools",
			register: func() error {
				return analytics_tools.RegisterAnalyticsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Google auth tools",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc)
			},
		},
		{
			name: "Analytics resources",
			register: func() error {
				return resources.RegisterAnalyticsResources(mcpSrv, sc)
			},
		},
		{
			name: "Prompts",
			register: func() error {
				return prompts.RegisterPrompts(mcpSrv)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, transport, addr, baseURL string, provider *instrumentation.Provider) error {
	baseURL = resolveBaseURL(baseURL, addr)

	healthChecker := server.NewHealthChecker(sc)

	oauthServer, err := server.NewOAuthHTTPServer(mcpSrv, transport, baseURL, healthChecker)
	if err != nil {
		return fmt.Errorf("failed to create OAuth HTTP server: %w", err)
	}

	if provider != nil && provider.Enabled() {
		oauthServer.SetMetrics(provider.Metrics())
	}

	endpoint := "/mcp"
	if transport == "sse" {
		endpoint = "/sse"
	}
	fmt.Printf("HTTP server with Google OAuth authentication starting on %s\n", addr)
	fmt.Printf("  MCP endpoint: %s\n", endpoint)
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	fmt.Printf("  OAuth metadata: /.well-known/oauth-protected-resource\n")
	fmt.Printf("  Authorization Server: %s\n", baseURL)

	if os.Getenv("GOOGLE_OAUTH_CLIENT_ID") == "" || os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET") == "" {
		fmt.Println("\n⚠ No Google OAuth app configured")
		fmt.Println("  Set GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET to enable authentication")
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := oauthServer.Start(addr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := oauthServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// resolveBaseURL falls back to a localhost URL derived from the listen
// address when no public base URL is configured.
func resolveBaseURL(baseURL, addr string) string {
	if baseURL != "" {
		log.Printf("Using configured base URL: %s", baseURL)
		return baseURL
	}

	baseURL = fmt.Sprintf("http://%s", addr)
	if addr != "" && addr[0] == ':' {
		baseURL = fmt.Sprintf("http://localhost%s", addr)
	}
	log.Printf("No base URL configured, using auto-detected: %s", baseURL)
	log.Printf("For deployed instances, set --base-url flag or BASE_URL env var")
	return baseURL
}
