package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync changed files into the agent's memory",
		Long: "Detect files changed since the last sync, delete their stale " +
			"passages, and index the new content. The first sync indexes every " +
			"tracked file.",
		Run: runSync,
	}

	cmd.Flags().Bool("full", false, "Re-index every tracked file")

	RootCmd.AddCommand(cmd)
}

func runSync(cmd *cobra.Command, args []string) {
	full, _ := cmd.Flags().GetBool("full")

	s, cleanup, err := newSyncer(cmd.Context())
	if err != nil {
		exitErr("setup", err)
	}
	defer cleanup()

	res, err := s.Sync(cmd.Context(), full)
	if err != nil {
		exitErr("sync", err)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
