package cli

import (
	"fmt"

	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules of the current set",
		Run:   runList,
	}

	cmd.Flags().StringP("topic", "t", "", "Filter by topic")
	cmd.Flags().IntP("limit", "l", 100, "Max results")
	cmd.Flags().Bool("all", false, "Include inactive rules")
	cmd.Flags().Bool("keys-only", false, "Only output set/key pairs")

	rulesCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	topicStr, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	var topic *model.Topic
	if topicStr != "" {
		t, err := model.ParseTopic(topicStr)
		if err != nil {
			exitErr("list", err)
		}
		topic = &t
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rules, err := s.List(cmd.Context(), store.ListParams{
		Set:             cfg.Set,
		Topic:           topic,
		Limit:           limit,
		IncludeInactive: all,
	})
	if err != nil {
		exitErr("list", err)
	}

	if keysOnly {
		for _, r := range rules {
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", r.Set, r.ID)
		}
		return
	}

	printJSON(cmd, rules)
}
