package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterPrompts registers the analytics prompt templates on the MCP server.
func RegisterPrompts(s *mcpserver.MCPServer) error {
	s.AddPrompt(mcp.NewPrompt("analyze_traffic",
		mcp.WithPromptDescription("Analyze website traffic for a GA4 property over a date range"),
		mcp.WithArgument("property_id",
			mcp.ArgumentDescription("Numeric GA4 property ID"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("days",
			mcp.ArgumentDescription("Number of days to analyze (default 28)"),
		),
	), handleAnalyzeTraffic)

	s.AddPrompt(mcp.NewPrompt("conversion_analysis",
		mcp.WithPromptDescription("Break down conversions and key events for a GA4 property"),
		mcp.WithArgument("property_id",
			mcp.ArgumentDescription("Numeric GA4 property ID"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("event_name",
			mcp.ArgumentDescription("Key event to focus on (optional)"),
		),
	), handleConversionAnalysis)

	s.AddPrompt(mcp.NewPrompt("audience_insights",
		mcp.WithPromptDescription("Profile the audience of a GA4 property by geography, device, and demographics"),
		mcp.WithArgument("property_id",
			mcp.ArgumentDescription("Numeric GA4 property ID"),
			mcp.RequiredArgument(),
		),
	), handleAudienceInsights)

	s.AddPrompt(mcp.NewPrompt("compare_periods",
		mcp.WithPromptDescription("Compare core metrics between two date ranges for a GA4 property"),
		mcp.WithArgument("property_id",
			mcp.ArgumentDescription("Numeric GA4 property ID"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("current_start",
			mcp.ArgumentDescription("Start date of the current period (YYYY-MM-DD)"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("current_end",
			mcp.ArgumentDescription("End date of the current period (YYYY-MM-DD)"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("previous_start",
			mcp.ArgumentDescription("Start date of the comparison period (YYYY-MM-DD)"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("previous_end",
			mcp.ArgumentDescription("End date of the comparison period (YYYY-MM-DD)"),
			mcp.RequiredArgument(),
		),
	), handleComparePeriods)

	return nil
}

func requireArgument(request mcp.GetPromptRequest, name string) (string, error) {
	value := request.Params.Arguments[name]
	if value == "" {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	return value, nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

func handleAnalyzeTraffic(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	propertyID, err := requireArgument(request, "property_id")
	if err != nil {
		return nil, err
	}

	days := request.Params.Arguments["days"]
	if days == "" {
		days = "28"
	}

	text := fmt.Sprintf(`Analyze the website traffic for GA4 property %s over the last %s days.

Use the analytics_run_report tool against property %s to gather:
1. Daily sessions and activeUsers (dimension: date) to see the trend.
2. Top pages by screenPageViews (dimension: pagePath, limit 10).
3. Traffic sources (dimensions: sessionSource, sessionMedium) ordered by sessions.
4. Device split (dimension: deviceCategory).

Then summarize: the overall trend, the pages and channels driving traffic, any notable day-over-day spikes or drops, and concrete follow-up questions worth a deeper report.`, propertyID, days, propertyID)

	return promptResult("Traffic analysis for property "+propertyID, text), nil
}

func handleConversionAnalysis(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	propertyID, err := requireArgument(request, "property_id")
	if err != nil {
		return nil, err
	}

	focus := "all key events"
	eventName := request.Params.Arguments["event_name"]
	if eventName != "" {
		focus = fmt.Sprintf("the %q event", eventName)
	}

	text := fmt.Sprintf(`Analyze conversions for GA4 property %s, focusing on %s.

Use analytics_run_report against property %s to gather:
1. keyEvents and sessionKeyEventRate by date for the last 28 days.
2. keyEvents by sessionDefaultChannelGroup to find the converting channels.
3. keyEvents by landingPage (limit 10) to find the converting entry points.`, propertyID, focus, propertyID)

	if eventName != "" {
		text += fmt.Sprintf(`
Filter each report on eventName = %q using the dimension_filter argument.`, eventName)
	}

	text += `

Summarize which channels and pages convert best, where the rate is falling off, and what a reasonable next experiment would be.`

	return promptResult("Conversion analysis for property "+propertyID, text), nil
}

func handleAudienceInsights(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	propertyID, err := requireArgument(request, "property_id")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(`Build an audience profile for GA4 property %s over the last 28 days.

Use analytics_run_report against property %s to gather:
1. activeUsers by country and city (limit 15).
2. activeUsers by deviceCategory and operatingSystem.
3. activeUsers by browser (limit 10).
4. newUsers vs activeUsers by date to gauge audience growth.

Summarize where the audience is, what they browse with, and how the new-versus-returning balance is developing.`, propertyID, propertyID)

	return promptResult("Audience insights for property "+propertyID, text), nil
}

func handleComparePeriods(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	propertyID, err := requireArgument(request, "property_id")
	if err != nil {
		return nil, err
	}

	currentStart, err := requireArgument(request, "current_start")
	if err != nil {
		return nil, err
	}
	currentEnd, err := requireArgument(request, "current_end")
	if err != nil {
		return nil, err
	}
	previousStart, err := requireArgument(request, "previous_start")
	if err != nil {
		return nil, err
	}
	previousEnd, err := requireArgument(request, "previous_end")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(`Compare GA4 property %s between two periods:
current period %s to %s, previous period %s to %s.

Run analytics_run_report twice against property %s with metrics
sessions, activeUsers, screenPageViews, keyEvents, and bounceRate,
once per date range. Then compute the absolute and percentage change
for each metric, call out the biggest movers, and suggest which
dimension (channel, page, device, or geography) to drill into to
explain the change.`, propertyID, currentStart, currentEnd, previousStart, previousEnd, propertyID)

	return promptResult("Period comparison for property "+propertyID, text), nil
}
