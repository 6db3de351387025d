package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tkuo-tkuo/LNG-AI/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server over the episode tree",
	Long: `Run a Model Context Protocol (MCP) server that exposes the episode tree as tools.

The MCP server provides three tools:
- plan_chunks: List the chunk files an episode is expected to have
- check_integrity: Run one integrity check and report its counts
- get_episode_transcript: Return an episode's stitched transcript

None of the tools call OpenAI.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)

Logs go to $XDG_CACHE_HOME/lngai/mcp.log.`,
	Example: `  # Run MCP server with stdio transport
  lngai mcp

  # Run MCP server with HTTP transport on port 8080
  lngai mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol
		config.Verbose = false
		config.Quiet = true
		l, err := internal.NewMCPLogger(config)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app, err := newApp()
		if err != nil {
			return err
		}

		mcpServer := internal.NewMCPServer(app, version)

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
