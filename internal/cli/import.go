package cli

import (
	"fmt"

	"github.com/rcliao/eliza/internal/ruleset"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import rules from a json or yaml rule file",
		Long:  "Import rules from a rule file into the current set. With --builtin the built-in German rules are imported.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().Bool("builtin", false, "Import the built-in rules")

	rulesCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	builtin, _ := cmd.Flags().GetBool("builtin")

	rs := ruleset.Default()
	if !builtin {
		if len(args) == 0 {
			exitErr("import", fmt.Errorf("rule file or --builtin is required"))
		}
		var err error
		rs, err = ruleset.LoadFile(args[0])
		if err != nil {
			exitErr("load rules", err)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), cfg.Set, rs.Rules)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"set":%q,"imported":%d}`+"\n", cfg.Set, imported)
}
