package cli

import (
	"github.com/rcliao/eliza/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve a rule",
		Run:   runGet,
	}

	cmd.Flags().StringP("key", "k", "", "Rule key (required)")
	cmd.Flags().Bool("history", false, "Return all versions (newest first)")
	cmd.Flags().Int("version", 0, "Specific version number")

	cmd.MarkFlagRequired("key")

	rulesCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")
	history, _ := cmd.Flags().GetBool("history")
	version, _ := cmd.Flags().GetInt("version")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rules, err := s.Get(cmd.Context(), store.GetParams{
		Set:     cfg.Set,
		Key:     key,
		History: history,
		Version: version,
	})
	if err != nil {
		exitErr("get", err)
	}

	if history || len(rules) > 1 {
		printJSON(cmd, rules)
	} else {
		printJSON(cmd, rules[0])
	}
}
