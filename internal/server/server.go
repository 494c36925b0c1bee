// Package server exposes the syncer over MCP so AI coding tools can
// sync the repo and ask it questions directly.
//
// This is the composition root for the server path: it wires the
// provider, state store, git repo, and answer cache into one Syncer
// shared by all tools. The answer cache lives here for the whole
// server process, so repeated questions between syncs are free.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rcliao/agent-sync/internal/cache"
	"github.com/rcliao/agent-sync/internal/config"
	"github.com/rcliao/agent-sync/internal/gitx"
	"github.com/rcliao/agent-sync/internal/provider"
	"github.com/rcliao/agent-sync/internal/state"
	"github.com/rcliao/agent-sync/internal/syncer"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all tools registered. The returned
// cleanup closes the state store and must be called on shutdown.
func New(ctx context.Context, cfg *config.Config, repoDir string) (*server.MCPServer, func(), error) {
	repo, err := gitx.Open(ctx, repoDir)
	if err != nil {
		return nil, nil, err
	}

	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	p := provider.NewLettaClient(cfg.BaseURL, cfg.APIKey)
	sync := syncer.New(cfg, p, store, repo, cache.New(nil))

	s := server.NewMCPServer(
		"agent-sync",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	syncTool := NewSyncTool(sync)
	s.AddTool(syncTool.Definition(), syncTool.Handle)

	askTool := NewAskTool(sync)
	s.AddTool(askTool.Definition(), askTool.Handle)

	statusTool := NewStatusTool(sync)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	reconcileTool := NewReconcileTool(sync)
	s.AddTool(reconcileTool.Definition(), reconcileTool.Handle)

	return s, func() { store.Close() }, nil
}

const instructions = `agent-sync mirrors this repository into a remote agent's
archival memory. Call sync_repo after making changes so the agent sees the
current tree, then ask_repo to query it. repo_sync_status shows what is
indexed and what is pending; reconcile_repo repairs drift if the remote
store was modified out-of-band.`
