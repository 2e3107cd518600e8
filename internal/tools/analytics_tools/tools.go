package analytics_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/google"
	"github.com/teemow/ga4mcp/internal/server"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterAnalyticsTools registers all GA4 tools with the MCP server.
// All GA4 tools are read-only against Google; readOnly is accepted for
// parity with the other registration functions and gates nothing today.
func RegisterAnalyticsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerReportTools(s, sc); err != nil {
		return fmt.Errorf("failed to register report tools: %w", err)
	}

	if err := registerMetadataTools(s, sc); err != nil {
		return fmt.Errorf("failed to register metadata tools: %w", err)
	}

	if err := registerAdminTools(s, sc); err != nil {
		return fmt.Errorf("failed to register admin tools: %w", err)
	}

	return nil
}

// getAnalyticsClient retrieves or creates a Data API client for the account.
func getAnalyticsClient(ctx context.Context, account string, sc *server.ServerContext) (*analytics.Client, error) {
	client := sc.AnalyticsClientForAccount(account)
	if client == nil {
		if !analytics.HasTokenForAccount(account) {
			return nil, fmt.Errorf("%s", authenticationRequiredMessage(account))
		}

		var err error
		client, err = analytics.NewClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Analytics client for account %s: %w", account, err)
		}
		sc.SetAnalyticsClientForAccount(account, client)
	}
	return client, nil
}

// getAdminClient retrieves or creates an Admin API client for the account.
func getAdminClient(ctx context.Context, account string, sc *server.ServerContext) (*analytics.AdminClient, error) {
	client := sc.AdminClientForAccount(account)
	if client == nil {
		if !analytics.HasTokenForAccount(account) {
			return nil, fmt.Errorf("%s", authenticationRequiredMessage(account))
		}

		var err error
		client, err = analytics.NewAdminClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Analytics Admin client for account %s: %w", account, err)
		}
		sc.SetAdminClientForAccount(account, client)
	}
	return client, nil
}

func authenticationRequiredMessage(account string) string {
	authURL := google.GetAuthenticationErrorMessage(account)
	return fmt.Sprintf(`Google OAuth token not found for account "%s". To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account that has access to your Analytics properties
3. Grant read access to Google Analytics
4. Copy the authorization code

5. Provide the authorization code to your AI agent
   The agent will use the google_save_auth_code tool with account="%s" to complete authentication.

Note: You only need to authorize once. The tokens will be automatically refreshed.`, account, authURL, account)
}

// splitFields splits a comma-separated field list, trimming whitespace
// and dropping empty entries.
func splitFields(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		if field := strings.TrimSpace(part); field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// parseFilterArg parses a dimension_filter or metric_filter argument.
// The value may be a JSON string or an already-decoded object.
func parseFilterArg(args map[string]interface{}, key string) (*analytics.FilterInput, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	var filter analytics.FilterInput
	if err := json.Unmarshal(data, &filter); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if len(filter.Conditions) == 0 && len(filter.Groups) == 0 {
		return nil, fmt.Errorf("invalid %s: no conditions or groups", key)
	}
	return &filter, nil
}

// parseOrderBy parses a comma-separated order_by list. A leading "-"
// requests descending order. Names found in metrics order by metric,
// everything else orders by dimension.
func parseOrderBy(value string, metrics []string) []analytics.OrderByInput {
	metricSet := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		metricSet[m] = true
	}

	var orderBys []analytics.OrderByInput
	for _, field := range splitFields(value) {
		desc := strings.HasPrefix(field, "-")
		name := strings.TrimPrefix(field, "-")
		if name == "" {
			continue
		}

		orderBy := analytics.OrderByInput{Desc: desc}
		if metricSet[name] {
			orderBy.Metric = name
		} else {
			orderBy.Dimension = name
		}
		orderBys = append(orderBys, orderBy)
	}
	return orderBys
}

// intArg reads a numeric argument. JSON numbers decode as float64.
func intArg(args map[string]interface{}, key string) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
