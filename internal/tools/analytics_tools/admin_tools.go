package analytics_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/tools/common"
)

// registerAdminTools registers the Admin API tools
func registerAdminTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listAccountsTool := mcp.NewTool("analytics_list_accounts",
		mcp.WithDescription("List all Google Analytics accounts accessible to the authenticated user"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listAccountsTool, common.InstrumentedToolHandlerWithService(
		"analytics_list_accounts", instrumentation.ServiceAdmin, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			client, err := getAdminClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			accounts, err := client.ListAccounts(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
			}

			result, _ := json.MarshalIndent(map[string]any{
				"accounts": accounts,
				"count":    len(accounts),
			}, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	listPropertiesTool := mcp.NewTool("analytics_list_properties",
		mcp.WithDescription("List the GA4 properties of an Analytics account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("analytics_account",
			mcp.Required(),
			mcp.Description("Analytics account, e.g. 'accounts/123' or just '123'"),
		),
	)

	s.AddTool(listPropertiesTool, common.InstrumentedToolHandlerWithService(
		"analytics_list_properties", instrumentation.ServiceAdmin, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			analyticsAccount, ok := args["analytics_account"].(string)
			if !ok || analyticsAccount == "" {
				return mcp.NewToolResultError("analytics_account is required"), nil
			}

			client, err := getAdminClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			properties, err := client.ListProperties(ctx, analyticsAccount)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list properties: %v", err)), nil
			}

			result, _ := json.MarshalIndent(map[string]any{
				"properties": properties,
				"count":      len(properties),
			}, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	getPropertyTool := mcp.NewTool("analytics_get_property",
		mcp.WithDescription("Get details of a GA4 property"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
	)

	s.AddTool(getPropertyTool, common.InstrumentedToolHandlerWithService(
		"analytics_get_property", instrumentation.ServiceAdmin, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			property, ok := args["property"].(string)
			if !ok || property == "" {
				return mcp.NewToolResultError("property is required"), nil
			}

			client, err := getAdminClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			result, err := client.GetProperty(ctx, property)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get property: %v", err)), nil
			}

			data, _ := json.MarshalIndent(result, "", "  ")
			return mcp.NewToolResultText(string(data)), nil
		},
	))

	listDataStreamsTool := mcp.NewTool("analytics_list_data_streams",
		mcp.WithDescription("List the data streams (web, iOS, Android) of a GA4 property"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
	)

	s.AddTool(listDataStreamsTool, common.InstrumentedToolHandlerWithService(
		"analytics_list_data_streams", instrumentation.ServiceAdmin, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			property, ok := args["property"].(string)
			if !ok || property == "" {
				return mcp.NewToolResultError("property is required"), nil
			}

			client, err := getAdminClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			streams, err := client.ListDataStreams(ctx, property)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list data streams: %v", err)), nil
			}

			result, _ := json.MarshalIndent(map[string]any{
				"data_streams": streams,
				"count":        len(streams),
			}, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		},
	))

	getDataStreamTool := mcp.NewTool("analytics_get_data_stream",
		mcp.WithDescription("Get details of a data stream, including its measurement ID"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("property",
			mcp.Required(),
			mcp.Description("GA4 property, e.g. 'properties/123456' or just '123456'"),
		),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Data stream ID"),
		),
	)

	s.AddTool(getDataStreamTool, common.InstrumentedToolHandlerWithService(
		"analytics_get_data_stream", instrumentation.ServiceAdmin, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			account := common.GetAccountFromArgs(ctx, args)

			property, ok := args["property"].(string)
			if !ok || property == "" {
				return mcp.NewToolResultError("property is required"), nil
			}

			stream, ok := args["stream"].(string)
			if !ok || stream == "" {
				return mcp.NewToolResultError("stream is required"), nil
			}

			client, err := getAdminClient(ctx, account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			result, err := client.GetDataStream(ctx, property, stream)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get data stream: %v", err)), nil
			}

			data, _ := json.MarshalIndent(result, "", "  ")
			return mcp.NewToolResultText(string(data)), nil
		},
	))

	return nil
}
