// Package cmd implements the command-line interface for ga4mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Analytics tools for AI assistants
//   - report: Run a one-off GA4 report from the command line
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
