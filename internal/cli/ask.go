package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the agent a question about the repo",
		Long: "Send a question to the agent. Answers are cached against the " +
			"last sync commit, so repeating a question is free until the repo " +
			"is re-synced.",
		Args: cobra.MinimumNArgs(1),
		Run:  runAsk,
	}

	cmd.Flags().StringP("model", "m", "", "Model override (default: agent's model)")
	cmd.Flags().Bool("no-cache", false, "Always ask the agent, skipping the answer cache")

	RootCmd.AddCommand(cmd)
}

func runAsk(cmd *cobra.Command, args []string) {
	modelKey, _ := cmd.Flags().GetString("model")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	q := strings.Join(args, " ")

	s, cleanup, err := newSyncer(cmd.Context())
	if err != nil {
		exitErr("setup", err)
	}
	defer cleanup()

	answer, cached, err := s.Answer(cmd.Context(), q, modelKey, noCache)
	if err != nil {
		exitErr("ask", err)
	}

	if cached {
		fmt.Fprintln(os.Stderr, "(cached)")
	}
	fmt.Println(answer)
}
