package cli

import (
	"strings"

	"github.com/rcliao/eliza/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search rules by key, description, pattern or response text",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().Bool("all-sets", false, "Search every set")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	rulesCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	allSets, _ := cmd.Flags().GetBool("all-sets")
	limit, _ := cmd.Flags().GetInt("limit")

	set := cfg.Set
	if allSets {
		set = ""
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Set:   set,
		Query: strings.Join(args, " "),
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	printJSON(cmd, results)
}
