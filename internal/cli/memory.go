package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Show the agent's core-memory blocks",
		Long:  "Fetch the configured core-memory blocks from the agent. Absent blocks are skipped.",
		Run:   runMemory,
	}

	RootCmd.AddCommand(cmd)
}

func runMemory(cmd *cobra.Command, args []string) {
	s, cleanup, err := newSyncer(cmd.Context())
	if err != nil {
		exitErr("setup", err)
	}
	defer cleanup()

	blocks, err := s.Memory(cmd.Context())
	if err != nil {
		exitErr("memory", err)
	}

	if len(blocks) == 0 {
		fmt.Println("[]")
		return
	}
	b, _ := json.MarshalIndent(blocks, "", "  ")
	fmt.Println(string(b))
}
