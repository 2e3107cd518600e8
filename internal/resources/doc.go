// Package resources provides MCP resources exposing Google Analytics
// data under the ga:// URI scheme. Resources are read-only data sources
// that MCP clients can fetch, such as the account list, property
// summaries, and realtime snapshots.
//
// Static resources:
//   - ga://accounts
//
// Templated resources:
//   - ga://accounts/{account_id}/properties
//   - ga://properties/{property_id}/summary
//   - ga://properties/{property_id}/top-pages
//   - ga://properties/{property_id}/top-sources
//   - ga://properties/{property_id}/realtime
//
// For HTTP transports the account is resolved from the OAuth context, so
// each authenticated user sees their own Analytics data.
package resources
