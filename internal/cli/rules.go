package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Rule set management",
}

func init() {
	setsCmd := &cobra.Command{
		Use:   "sets",
		Short: "List all stored rule sets",
		Run:   runSets,
	}

	rulesCmd.AddCommand(setsCmd)
	RootCmd.AddCommand(rulesCmd)
}

func runSets(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sets, err := s.ListSets(cmd.Context())
	if err != nil {
		exitErr("list sets", err)
	}

	printJSON(cmd, sets)
}

func printJSON(cmd *cobra.Command, v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
