// Package analytics_tools provides MCP tools for Google Analytics 4.
//
// Report tools (Analytics Data API):
//   - analytics_run_report: run a report with date ranges, dimensions,
//     metrics, filters, ordering, and paging
//   - analytics_run_realtime_report: active users right now
//   - analytics_batch_run_reports: up to 5 reports in one call
//
// Metadata tools (Analytics Data API):
//   - analytics_list_dimensions: available dimensions for a property
//   - analytics_list_metrics: available metrics for a property
//   - analytics_check_compatibility: check dimension/metric combinations
//
// Admin tools (Analytics Admin API):
//   - analytics_list_accounts: accessible Analytics accounts
//   - analytics_list_properties: GA4 properties of an account
//   - analytics_get_property: property details
//   - analytics_list_data_streams: data streams of a property
//   - analytics_get_data_stream: data stream details
//
// All tools accept an optional account argument for multi-account
// support. When the server runs with OAuth, the account is resolved
// from the authenticated user instead.
package analytics_tools
