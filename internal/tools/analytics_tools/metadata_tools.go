package analytics_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/tools/common"
)

// registerMetadataTools registers the Data API metadata tools
func registerMetadataTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listDimensionsTool := mcp.NewTool("analytics_list_dimensions",
		mcp.WithDescription("List the dimensions available for GA4 reports, including custom dimensions of a property"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Description("GA4 property for property-specific dimensions; omit for the standard catalog"),
		),
		mcp.WithString("category",
			mcp.Description("Only return dimensions in this category, e.g. 'Time' or 'Geography'"),
		),
	)

	s.AddTool(listDimensionsTool, common.InstrumentedToolHandlerWithService(
		"analytics_list_dimensions", instrumentation.ServiceData, instrumentation.OperationGetMetadata, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			client, err := getAnalyticsClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			metadata, err := client.GetMetadata(ctx, getString(args, "property"))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get metadata: %v", err)), nil
			}

			dimensions := filterDimensionsByCategory(metadata.Dimensions, getString(args, "category"))

			result, _ := json.MarshalIndent(map[string]any{
				"dimensions": dimensions,
				"count":      len(dimensions),
			}, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	listMetricsTool := mcp.NewTool("analytics_list_metrics",
		mcp.WithDescription("List the metrics available for GA4 reports, including custom metrics of a property"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Description("GA4 property for property-specific metrics; omit for the standard catalog"),
		),
		mcp.WithString("category",
			mcp.Description("Only return metrics in this category, e.g. 'Session' or 'Revenue'"),
		),
	)

	s.AddTool(listMetricsTool, common.InstrumentedToolHandlerWithService(
		"analytics_list_metrics", instrumentation.ServiceData, instrumentation.OperationGetMetadata, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			client, err := getAnalyticsClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			metadata, err := client.GetMetadata(ctx, getString(args, "property"))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get metadata: %v", err)), nil
			}

			metrics := filterMetricsByCategory(metadata.Metrics, getString(args, "category"))

			result, _ := json.MarshalIndent(map[string]any{
				"metrics": metrics,
				"count":   len(metrics),
			}, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	checkCompatibilityTool := mcp.NewTool("analytics_check_compatibility",
		mcp.WithDescription("Check which dimensions and metrics can be combined in a single GA4 report"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
		mcp.WithString("dimensions",
			mcp.Description("Comma-separated dimension names to check"),
		),
		mcp.WithString("metrics",
			mcp.Description("Comma-separated metric names to check"),
		),
	)

	s.AddTool(checkCompatibilityTool, common.InstrumentedToolHandlerWithService(
		"analytics_check_compatibility", instrumentation.ServiceData, instrumentation.OperationCompatibility, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			property, ok := args["property"].(string)
			if !ok || property == "" {
				return mcp.NewToolResultError("property is required"), nil
			}

			dimensions := splitFields(getString(args, "dimensions"))
			metrics := splitFields(getString(args, "metrics"))
			if len(dimensions) == 0 && len(metrics) == 0 {
				return mcp.NewToolResultError("at least one of dimensions or metrics is required"), nil
			}

			client, err := getAnalyticsClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			compatibility, err := client.CheckCompatibility(ctx, property, dimensions, metrics)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to check compatibility: %v", err)), nil
			}

			result, _ := json.MarshalIndent(compatibility, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	return nil
}

func filterDimensionsByCategory(dimensions []analytics.DimensionInfo, category string) []analytics.DimensionInfo {
	if category == "" {
		return dimensions
	}

	filtered := make([]analytics.DimensionInfo, 0, len(dimensions))
	for _, d := range dimensions {
		if strings.EqualFold(d.Category, category) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func filterMetricsByCategory(metrics []analytics.MetricInfo, category string) []analytics.MetricInfo {
	if category == "" {
		return metrics
	}

	filtered := make([]analytics.MetricInfo, 0, len(metrics))
	for _, m := range metrics {
		if strings.EqualFold(m.Category, category) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
