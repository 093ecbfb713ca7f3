package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gcalendar-mcp application
var rootCmd = &cobra.Command{
	Use:   "gcalendar-mcp",
	Short: "MCP server for creating Google Calendar events",
	Long: `gcalendar-mcp is a Model Context Protocol (MCP) server that lets AI
assistants create Google Calendar events.

It exposes a single mutating tool (create_event) plus a ping liveness
probe, and talks to the Google Calendar API with credentials supplied
via environment variables.`,
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
	rootCmd.SetVersionTemplate(`{{printf "gcalendar-mcp version %s\n" .Version}}`)

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
	rootCmd.AddCommand(newVersionCmd())
}
