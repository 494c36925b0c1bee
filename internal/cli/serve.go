package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/rcliao/agent-sync/internal/config"
	mcpserver "github.com/rcliao/agent-sync/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: "Expose sync_repo, ask_repo, repo_sync_status, and reconcile_repo " +
			"as MCP tools over stdio, for use from AI coding tools.",
		Run: runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("setup", err)
	}
	if err := cfg.Validate(); err != nil {
		exitErr("setup", err)
	}

	s, cleanup, err := mcpserver.New(cmd.Context(), cfg, repoDir)
	if err != nil {
		exitErr("setup", err)
	}
	defer cleanup()

	if err := server.ServeStdio(s); err != nil {
		exitErr("serve", err)
	}
}
