package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/ga4mcp/internal/analytics"
)

func newReportCmd() *cobra.Command {
	var (
		account    string
		property   string
		metrics    string
		dimensions string
		startDate  string
		endDate    string
		days       int
		limit      int64
		orderBy    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run a one-off GA4 report",
		Long: `Run a Google Analytics 4 report from the command line and print the
result as a plain text table or JSON.

Examples:
  ga4mcp report --property 123456
  ga4mcp report --property 123456 --metrics sessions,activeUsers --dimensions date --days 28
  ga4mcp report --property 123456 --dimensions pagePath --order-by -screenPageViews --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if property == "" {
				return fmt.Errorf("--property is required")
			}

			metricNames := splitList(metrics)
			if len(metricNames) == 0 {
				return fmt.Errorf("--metrics must name at least one metric")
			}

			input := analytics.RunReportInput{
				Property:   property,
				StartDate:  startDate,
				EndDate:    endDate,
				Dimensions: splitList(dimensions),
				Metrics:    metricNames,
				Limit:      limit,
			}

			if days > 0 {
				if startDate != "" || endDate != "" {
					return fmt.Errorf("--days cannot be combined with --start-date or --end-date")
				}
				input.StartDate, input.EndDate = analytics.DateRangeForDays(days)
			}

			metricSet := make(map[string]bool, len(metricNames))
			for _, m := range metricNames {
				metricSet[m] = true
			}
			for _, field := range splitList(orderBy) {
				desc := strings.HasPrefix(field, "-")
				name := strings.TrimPrefix(field, "-")
				ob := analytics.OrderByInput{Desc: desc}
				if metricSet[name] {
					ob.Metric = name
				} else {
					ob.Dimension = name
				}
				input.OrderBys = append(input.OrderBys, ob)
			}

			client, err := analytics.NewClientForAccount(cmd.Context(), account)
			if err != nil {
				return fmt.Errorf("failed to create Analytics client: %w", err)
			}

			resp, err := client.RunReport(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("failed to run report: %w", err)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(analytics.FormatReport(resp), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(analytics.RenderReportText(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name for the local token file")
	cmd.Flags().StringVar(&property, "property", "", "GA4 property, e.g. 'properties/123456' or just '123456'")
	cmd.Flags().StringVar(&metrics, "metrics", "activeUsers,sessions,screenPageViews", "Comma-separated metric names")
	cmd.Flags().StringVar(&dimensions, "dimensions", "date", "Comma-separated dimension names")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Start date (YYYY-MM-DD, 'NdaysAgo', 'yesterday', or 'today')")
	cmd.Flags().StringVar(&endDate, "end-date", "", "End date (YYYY-MM-DD, 'NdaysAgo', 'yesterday', or 'today')")
	cmd.Flags().IntVar(&days, "days", 0, "Report on the last N days instead of explicit dates")
	cmd.Flags().Int64Var(&limit, "limit", 0, "Maximum number of rows")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "Comma-separated fields to order by; prefix with '-' for descending")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON instead of a text table")

	return cmd
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
