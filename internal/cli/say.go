package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "say [text]",
		Short: "Reply to one input",
		Long:  "Reply to one input. Without arguments every stdin line is one turn of the same conversation.",
		Run:   runSay,
	}

	cmd.Flags().StringP("rules", "r", "", "Rule file (json or yaml); overrides the stored set")

	RootCmd.AddCommand(cmd)
}

func runSay(cmd *cobra.Command, args []string) {
	rulesPath, _ := cmd.Flags().GetString("rules")
	if rulesPath == "" {
		rulesPath = cfg.Rules
	}

	e, err := newEngine(cmd, rulesPath)
	if err != nil {
		exitErr("load rules", err)
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		fmt.Fprintln(out, e.Respond(strings.Join(args, " ")))
		return
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		fmt.Fprintln(out, e.Respond(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		exitErr("read stdin", err)
	}
}
