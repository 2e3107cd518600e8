package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/mcp/oauth"
	"github.com/teemow/ga4mcp/internal/server"
)

// RegisterAnalyticsResources registers the ga:// resources on the MCP server.
func RegisterAnalyticsResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	accountsResource := mcp.NewResource(
		"ga://accounts",
		"Analytics Accounts",
		mcp.WithResourceDescription("All Google Analytics accounts accessible to the current user"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(accountsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccounts(ctx, request, sc)
	})

	propertiesTemplate := mcp.NewResourceTemplate(
		"ga://accounts/{account_id}/properties",
		"Account Properties",
		mcp.WithTemplateDescription("GA4 properties belonging to an Analytics account"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(propertiesTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccountProperties(ctx, request, sc)
	})

	summaryTemplate := mcp.NewResourceTemplate(
		"ga://properties/{property_id}/summary",
		"Property Traffic Summary",
		mcp.WithTemplateDescription("Sessions, users, and engagement for the last 28 days"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(summaryTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePropertyReport(ctx, request, sc, analytics.RunReportInput{
			Metrics: []string{"activeUsers", "sessions", "screenPageViews", "averageSessionDuration", "bounceRate"},
		})
	})

	topPagesTemplate := mcp.NewResourceTemplate(
		"ga://properties/{property_id}/top-pages",
		"Top Pages",
		mcp.WithTemplateDescription("Most viewed pages over the last 28 days"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(topPagesTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePropertyReport(ctx, request, sc, analytics.RunReportInput{
			Dimensions: []string{"pagePath", "pageTitle"},
			Metrics:    []string{"screenPageViews", "activeUsers"},
			OrderBys:   []analytics.OrderByInput{{Metric: "screenPageViews", Desc: true}},
			Limit:      10,
		})
	})

	topSourcesTemplate := mcp.NewResourceTemplate(
		"ga://properties/{property_id}/top-sources",
		"Top Traffic Sources",
		mcp.WithTemplateDescription("Top session sources and mediums over the last 28 days"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(topSourcesTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePropertyReport(ctx, request, sc, analytics.RunReportInput{
			Dimensions: []string{"sessionSource", "sessionMedium"},
			Metrics:    []string{"sessions", "activeUsers"},
			OrderBys:   []analytics.OrderByInput{{Metric: "sessions", Desc: true}},
			Limit:      10,
		})
	})

	realtimeTemplate := mcp.NewResourceTemplate(
		"ga://properties/{property_id}/realtime",
		"Realtime Snapshot",
		mcp.WithTemplateDescription("Active users right now, by screen"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(realtimeTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePropertyRealtime(ctx, request, sc)
	})

	return nil
}

// extractAccountFromContext extracts the user's email from OAuth context.
// Falls back to "default" for STDIO transport.
func extractAccountFromContext(ctx context.Context) string {
	if userInfo, ok := oauth.GetUserFromContext(ctx); ok {
		return userInfo.Email
	}
	return "default"
}

// parseResourceURI extracts the identifier between prefix and suffix piece
// of a ga:// URI, for example the property ID out of
// ga://properties/123/summary.
func parseResourceURI(uri, collection string) (string, error) {
	prefix := "ga://" + collection + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("invalid resource URI: %s", uri)
	}

	rest := strings.TrimPrefix(uri, prefix)
	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", fmt.Errorf("resource URI missing identifier: %s", uri)
	}

	return id, nil
}

func jsonResourceContents(uri string, data any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func handleAccounts(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	adminClient := sc.AdminClientForAccount(account)
	if adminClient == nil {
		return nil, fmt.Errorf("no Analytics Admin client available for account: %s", account)
	}

	accounts, err := adminClient.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return jsonResourceContents(request.Params.URI, map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

func handleAccountProperties(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	accountID, err := parseResourceURI(request.Params.URI, "accounts")
	if err != nil {
		return nil, err
	}

	adminClient := sc.AdminClientForAccount(account)
	if adminClient == nil {
		return nil, fmt.Errorf("no Analytics Admin client available for account: %s", account)
	}

	properties, err := adminClient.ListProperties(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return jsonResourceContents(request.Params.URI, map[string]any{
		"account":    "accounts/" + accountID,
		"properties": properties,
		"count":      len(properties),
	})
}

func handlePropertyReport(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext, input analytics.RunReportInput) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	propertyID, err := parseResourceURI(request.Params.URI, "properties")
	if err != nil {
		return nil, err
	}

	client := sc.AnalyticsClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf("no Analytics client available for account: %s", account)
	}

	input.Property = "properties/" + propertyID
	input.StartDate, input.EndDate = analytics.DateRangeForDays(28)

	resp, err := client.RunReport(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run report: %w", err)
	}

	return jsonResourceContents(request.Params.URI, analytics.FormatReport(resp))
}

func handlePropertyRealtime(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	propertyID, err := parseResourceURI(request.Params.URI, "properties")
	if err != nil {
		return nil, err
	}

	client := sc.AnalyticsClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf("no Analytics client available for account: %s", account)
	}

	resp, err := client.RunRealtimeReport(ctx, analytics.RealtimeInput{
		Property:   "properties/" + propertyID,
		Dimensions: []string{"unifiedScreenName"},
		Metrics:    []string{"activeUsers"},
		Limit:      5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run realtime report: %w", err)
	}

	return jsonResourceContents(request.Params.URI, analytics.FormatRealtimeReport(resp))
}
