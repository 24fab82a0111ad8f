package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	cmd.Flags().Bool("human", false, "Print a short human-readable summary")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	human, _ := cmd.Flags().GetBool("human")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DB)
	if err != nil {
		exitErr("stats", err)
	}

	if human {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
		fmt.Fprintf(out, "%s live rule versions of %s stored\n",
			humanize.Comma(int64(stats.ActiveRows)), humanize.Comma(int64(stats.TotalRows)))
		for _, set := range stats.Sets {
			fmt.Fprintf(out, "  %-16s %d rules, %d versions\n", set.Set, set.Keys, set.Versions)
		}
		return
	}

	printJSON(cmd, stats)
}
