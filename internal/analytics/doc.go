// Package analytics provides clients for the Google Analytics 4 Data API
// and Admin API.
//
// This package wraps google.golang.org/api/analyticsdata/v1beta and
// analyticsadmin/v1beta and provides functionality for:
//   - Running reports (core, realtime, and batched)
//   - Building GA4 FilterExpression trees from flat filter conditions
//   - Flattening columnar report responses into named records
//   - Listing dimension and metric metadata and checking compatibility
//   - Listing accounts, properties, and data streams
//
// The clients support both CLI and MCP server modes, with multi-account
// authentication through the unified Google OAuth2 system. Tokens are
// stored per-account in the user's cache directory.
//
// # Example Usage
//
//	// Create a Data API client for the default account
//	client, err := analytics.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run a report for the last 28 days
//	resp, err := client.RunReport(ctx, analytics.RunReportInput{
//	    Property:   "properties/123456",
//	    StartDate:  "28daysAgo",
//	    EndDate:    "today",
//	    Dimensions: []string{"country"},
//	    Metrics:    []string{"activeUsers", "sessions"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report := analytics.FormatReport(resp)
package analytics
