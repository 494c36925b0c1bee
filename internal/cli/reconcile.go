package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Detect and repair drift against the remote store",
		Long: "Compare the local passage map with the passages the server " +
			"actually holds. Passages deleted remotely are dropped from the " +
			"local map; orphaned remote passages are reported, and deleted " +
			"with --delete-orphans.",
		Run: runReconcile,
	}

	cmd.Flags().Bool("delete-orphans", false, "Delete remote passages with no local record")

	RootCmd.AddCommand(cmd)
}

func runReconcile(cmd *cobra.Command, args []string) {
	deleteOrphans, _ := cmd.Flags().GetBool("delete-orphans")

	s, cleanup, err := newSyncer(cmd.Context())
	if err != nil {
		exitErr("setup", err)
	}
	defer cleanup()

	plan, err := s.Reconcile(cmd.Context(), deleteOrphans)
	if err != nil {
		exitErr("reconcile", err)
	}

	b, _ := json.MarshalIndent(plan, "", "  ")
	fmt.Println(string(b))
}
