package analytics_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/tools/common"
)

// registerReportTools registers the Data API report tools
func registerReportTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	runReportTool := mcp.NewTool("analytics_run_report",
		mcp.WithDescription("Run a Google Analytics 4 report with dimensions, metrics, filters, and ordering"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
		mcp.WithString("metrics",
			mcp.Required(),
			mcp.Description("Comma-separated metric names, e.g. 'sessions,activeUsers'"),
		),
		mcp.WithString("dimensions",
			mcp.Description("Comma-separated dimension names, e.g. 'date,country'"),
		),
		mcp.WithString("start_date",
			mcp.Description("Start date (YYYY-MM-DD, 'NdaysAgo', 'yesterday', or 'today')"),
		),
		mcp.WithString("end_date",
			mcp.Description("End date (YYYY-MM-DD, 'NdaysAgo', 'yesterday', or 'today')"),
		),
		mcp.WithNumber("days",
			mcp.Description("Report on the last N days instead of explicit dates (default: 7)"),
		),
		mcp.WithString("dimension_filter",
			mcp.Description(`JSON filter: a list of conditions and {"AND":[...]}/{"OR":[...]} groups, e.g. '[{"field":"country","operator":"=","value":"Germany"},{"OR":[...]}]'. The object form '{"conditions":[...],"groups":[...]}' is also accepted.`),
		),
		mcp.WithString("metric_filter",
			mcp.Description(`JSON filter on metrics, e.g. '[{"field":"sessions","operator":">","value":100}]'`),
		),
		mcp.WithString("order_by",
			mcp.Description("Comma-separated fields to order by; prefix with '-' for descending, e.g. '-sessions,country'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows to return"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Row offset for paging"),
		),
		mcp.WithString("output",
			mcp.Description("Output format: 'json' (default) or 'text'"),
		),
	)

	s.AddTool(runReportTool, common.InstrumentedToolHandlerWithService(
		"analytics_run_report", instrumentation.ServiceData, instrumentation.OperationRunReport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			input, err := parseRunReportArgs(args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getAnalyticsClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			resp, err := client.RunReport(ctx, *input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to run report: %v", err)), nil
			}

			if output, _ := args["output"].(string); output == "text" {
				return mcp.NewToolResultText(analytics.RenderReportText(resp)), nil
			}

			result, _ := json.MarshalIndent(analytics.FormatReport(resp), "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	realtimeTool := mcp.NewTool("analytics_run_realtime_report",
		mcp.WithDescription("Report on activity happening on a GA4 property right now"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
		mcp.WithString("metrics",
			mcp.Required(),
			mcp.Description("Comma-separated realtime metric names, e.g. 'activeUsers'"),
		),
		mcp.WithString("dimensions",
			mcp.Description("Comma-separated realtime dimension names, e.g. 'country,unifiedScreenName'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows to return"),
		),
		mcp.WithString("output",
			mcp.Description("Output format: 'json' (default) or 'text'"),
		),
	)

	s.AddTool(realtimeTool, common.InstrumentedToolHandlerWithService(
		"analytics_run_realtime_report", instrumentation.ServiceData, instrumentation.OperationRunRealtime, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			property, ok := args["property"].(string)
			if !ok || property == "" {
				return mcp.NewToolResultError("property is required"), nil
			}

			metrics := splitFields(getString(args, "metrics"))
			if len(metrics) == 0 {
				return mcp.NewToolResultError("metrics is required"), nil
			}

			client, err := getAnalyticsClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			resp, err := client.RunRealtimeReport(ctx, analytics.RealtimeInput{
				Property:   property,
				Dimensions: splitFields(getString(args, "dimensions")),
				Metrics:    metrics,
				Limit:      intArg(args, "limit"),
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to run realtime report: %v", err)), nil
			}

			if output, _ := args["output"].(string); output == "text" {
				return mcp.NewToolResultText(analytics.RenderRealtimeReportText(resp)), nil
			}

			result, _ := json.MarshalIndent(analytics.FormatRealtimeReport(resp), "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	batchTool := mcp.NewTool("analytics_batch_run_reports",
		mcp.WithDescription("Run up to 5 GA4 reports against one property in a single call"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
		mcp.WithString("requests",
			mcp.Required(),
			mcp.Description(`JSON array of report requests, e.g. '[{"metrics":["sessions"],"dimensions":["date"],"start_date":"7daysAgo","end_date":"today"}]'`),
		),
	)

	s.AddTool(batchTool, common.InstrumentedToolHandlerWithService(
		"analytics_batch_run_reports", instrumentation.ServiceData, instrumentation.OperationBatchReports, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			property, ok := args["property"].(string)
			if !ok || property == "" {
				return mcp.NewToolResultError("property is required"), nil
			}

			requestsJSON, ok := args["requests"].(string)
			if !ok || requestsJSON == "" {
				return mcp.NewToolResultError("requests is required"), nil
			}

			var inputs []analytics.RunReportInput
			if err := json.Unmarshal([]byte(requestsJSON), &inputs); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid requests JSON: %v", err)), nil
			}

			client, err := getAnalyticsClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			resp, err := client.BatchRunReports(ctx, property, inputs)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to run batch reports: %v", err)), nil
			}

			reports := make([]*analytics.Report, 0, len(resp.Reports))
			for _, report := range resp.Reports {
				reports = append(reports, analytics.FormatReport(report))
			}

			result, _ := json.MarshalIndent(map[string]any{
				"reports": reports,
				"count":   len(reports),
			}, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	return nil
}

// parseRunReportArgs builds a RunReportInput from tool arguments.
func parseRunReportArgs(args map[string]interface{}) (*analytics.RunReportInput, error) {
	property, ok := args["property"].(string)
	if !ok || property == "" {
		return nil, fmt.Errorf("property is required")
	}

	metrics := splitFields(getString(args, "metrics"))
	if len(metrics) == 0 {
		return nil, fmt.Errorf("metrics is required")
	}

	input := &analytics.RunReportInput{
		Property:   property,
		StartDate:  getString(args, "start_date"),
		EndDate:    getString(args, "end_date"),
		Dimensions: splitFields(getString(args, "dimensions")),
		Metrics:    metrics,
		Limit:      intArg(args, "limit"),
		Offset:     intArg(args, "offset"),
		OrderBys:   parseOrderBy(getString(args, "order_by"), metrics),
	}

	if days := intArg(args, "days"); days > 0 {
		if input.StartDate != "" || input.EndDate != "" {
			return nil, fmt.Errorf("days cannot be combined with start_date or end_date")
		}
		input.StartDate, input.EndDate = analytics.DateRangeForDays(int(days))
	}

	dimensionFilter, err := parseFilterArg(args, "dimension_filter")
	if err != nil {
		return nil, err
	}
	input.DimensionFilter = dimensionFilter

	metricFilter, err := parseFilterArg(args, "metric_filter")
	if err != nil {
		return nil, err
	}
	input.MetricFilter = metricFilter

	return input, nil
}

func getString(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return value
}
