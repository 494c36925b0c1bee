package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync state for the repo",
		Long:  "Report the current HEAD, last-synced commit, indexed file and passage counts, and files pending sync.",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	s, cleanup, err := newSyncer(cmd.Context())
	if err != nil {
		exitErr("setup", err)
	}
	defer cleanup()

	st, err := s.Status(cmd.Context())
	if err != nil {
		exitErr("status", err)
	}

	b, _ := json.MarshalIndent(st, "", "  ")
	fmt.Println(string(b))
}
