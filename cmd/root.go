package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the ga4mcp application
var rootCmd = &cobra.Command{
	Use:   "ga4mcp",
	Short: "MCP server for Google Analytics 4",
	Long: `ga4mcp exposes the Google Analytics 4 Data API and Admin API as tools,
resources, and prompts for AI assistants via the Model Context Protocol.

It can run as:
  - An MCP server over stdio, SSE, or streamable HTTP (default)
  - A one-off report command for quick checks from the terminal`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ga4mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
