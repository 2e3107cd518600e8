package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/instrumentation"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	dataClients  map[string]*analytics.Client      // Maps account name to Data API client
	adminClients map[string]*analytics.AdminClient // Maps account name to Admin API client
	metrics      *instrumentation.Metrics
	auditLogger  *instrumentation.AuditLogger
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	// Initialize client maps
	dataClients := make(map[string]*analytics.Client)
	adminClients := make(map[string]*analytics.AdminClient)

	// Try to create default clients, but don't fail if the token is missing.
	// Clients will be lazily initialized when first needed.
	if analytics.HasToken() {
		dataClient, err := analytics.NewClient(shutdownCtx)
		if err != nil {
			fmt.Printf("Warning: failed to create Analytics client for default account: %v\n", err)
		} else {
			dataClients["default"] = dataClient
		}

		adminClient, err := analytics.NewAdminClient(shutdownCtx)
		if err != nil {
			fmt.Printf("Warning: failed to create Admin client for default account: %v\n", err)
		} else {
			adminClients["default"] = adminClient
		}
	}

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		dataClients:  dataClients,
		adminClients: adminClients,
		shutdown:     false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// AnalyticsClientForAccount returns the Data API client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) AnalyticsClientForAccount(account string) *analytics.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.dataClients[account]; ok {
		return client
	}

	if !analytics.HasTokenForAccount(account) {
		return nil
	}

	client, err := analytics.NewClientForAccount(sc.ctx, account)
	if err != nil {
		fmt.Printf("Warning: failed to create Analytics client for account %s: %v\n", account, err)
		return nil
	}

	sc.dataClients[account] = client
	return client
}

// AnalyticsClient returns the Data API client for the default account
func (sc *ServerContext) AnalyticsClient() *analytics.Client {
	return sc.AnalyticsClientForAccount("default")
}

// SetAnalyticsClientForAccount sets the Data API client for a specific account
func (sc *ServerContext) SetAnalyticsClientForAccount(account string, client *analytics.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.dataClients[account] = client
}

// SetAnalyticsClient sets the Data API client for the default account
func (sc *ServerContext) SetAnalyticsClient(client *analytics.Client) {
	sc.SetAnalyticsClientForAccount("default", client)
}

// AdminClientForAccount returns the Admin API client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) AdminClientForAccount(account string) *analytics.AdminClient {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.adminClients[account]; ok {
		return client
	}

	if !analytics.HasTokenForAccount(account) {
		return nil
	}

	client, err := analytics.NewAdminClientForAccount(sc.ctx, account)
	if err != nil {
		fmt.Printf("Warning: failed to create Admin client for account %s: %v\n", account, err)
		return nil
	}

	sc.adminClients[account] = client
	return client
}

// AdminClient returns the Admin API client for the default account
func (sc *ServerContext) AdminClient() *analytics.AdminClient {
	return sc.AdminClientForAccount("default")
}

// SetAdminClientForAccount sets the Admin API client for a specific account
func (sc *ServerContext) SetAdminClientForAccount(account string, client *analytics.AdminClient) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.adminClients[account] = client
}

// SetAdminClient sets the Admin API client for the default account
func (sc *ServerContext) SetAdminClient(client *analytics.AdminClient) {
	sc.SetAdminClientForAccount("default", client)
}

// ResetClientsForAccount drops cached clients for an account so the next
// call re-creates them with fresh credentials
func (sc *ServerContext) ResetClientsForAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.dataClients, account)
	delete(sc.adminClients, account)
}

// SetMetrics attaches the metrics recorder used by instrumented tool handlers
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// SetAuditLogger attaches the audit logger used by instrumented tool handlers
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// Metrics returns the configured metrics recorder, or nil
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the configured audit logger, or nil
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
