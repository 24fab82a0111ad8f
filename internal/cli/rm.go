package cli

import (
	"fmt"

	"github.com/rcliao/eliza/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a rule",
		Run:   runRm,
	}

	cmd.Flags().StringP("key", "k", "", "Rule key (required)")
	cmd.Flags().Bool("all-versions", false, "Delete all versions")
	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	cmd.MarkFlagRequired("key")

	rulesCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")
	allVersions, _ := cmd.Flags().GetBool("all-versions")
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Rm(cmd.Context(), store.RmParams{
		Set:         cfg.Set,
		Key:         key,
		AllVersions: allVersions,
		Hard:        hard,
	})
	if err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"set":%q,"key":%q}`+"\n", cfg.Set, key)
}
