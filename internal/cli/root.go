// Package cli implements the agent-sync CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-sync/internal/cache"
	"github.com/rcliao/agent-sync/internal/config"
	"github.com/rcliao/agent-sync/internal/gitx"
	"github.com/rcliao/agent-sync/internal/provider"
	"github.com/rcliao/agent-sync/internal/state"
	"github.com/rcliao/agent-sync/internal/syncer"
)

var (
	configPath string
	repoDir    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "agent-sync",
	Short: "Sync a git repo into an agent's memory and ask it questions",
	Long: "agent-sync keeps a remote agent-memory store in step with a local " +
		"git working tree, chunking changed files into passages, and answers " +
		"questions about the tree through the agent.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config.yaml or ~/.config/agent-sync/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&repoDir, "repo", "r", ".", "Repository working tree")
}

// newSyncer builds a fully-wired syncer for a command invocation.
// The returned cleanup closes the state store.
func newSyncer(ctx context.Context) (*syncer.Syncer, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	repo, err := gitx.Open(ctx, repoDir)
	if err != nil {
		return nil, nil, err
	}

	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	p := provider.NewLettaClient(cfg.BaseURL, cfg.APIKey)
	s := syncer.New(cfg, p, store, repo, cache.New(nil))
	return s, func() { store.Close() }, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
