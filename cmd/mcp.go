package cmd

import (
	"github.com/shardsquad/shardstats/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the shardstats MCP server",
	Long:  `Launch an MCP server that allows AI agents to query match statistics via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Tool handlers suppress the view header so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, snapshots, version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
