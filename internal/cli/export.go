package cli

import (
	"github.com/rcliao/eliza/internal/ruleset"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current set as a rule file",
		Long:  "Export the latest version of every rule in the current set, in a format import and chat --rules read back.",
		Run:   runExport,
	}

	cmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	cmd.Flags().Bool("history", false, "Dump every stored version as JSON instead")

	rulesCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	history, _ := cmd.Flags().GetBool("history")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if history {
		all, err := s.ExportAll(cmd.Context(), cfg.Set)
		if err != nil {
			exitErr("export", err)
		}
		printJSON(cmd, all)
		return
	}

	rs, err := s.Export(cmd.Context(), cfg.Set)
	if err != nil {
		exitErr("export", err)
	}
	if err := ruleset.Encode(cmd.OutOrStdout(), rs, ruleset.Format(format)); err != nil {
		exitErr("export", err)
	}
}
