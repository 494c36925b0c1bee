package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-sync/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long:  "Create a commented config.yaml under ~/.config/agent-sync (or $XDG_CONFIG_HOME/agent-sync).",
		Run:   runInit,
	}

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	path, err := config.WriteStarter()
	if err != nil {
		exitErr("init", err)
	}
	fmt.Printf("wrote %s\n", path)
	fmt.Println("set agent_id (and api_key if your server needs one), then run: agent-sync sync")
}
