package cli

import (
	"fmt"
	"strings"

	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [response...]",
		Short: "Store a rule",
		Long:  "Store a rule. Each positional argument is one response template; storing an existing key adds a new version.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPut,
	}

	cmd.Flags().StringP("key", "k", "", "Rule key (generated when empty)")
	cmd.Flags().StringP("pattern", "p", "", "Regular expression (required)")
	cmd.Flags().Int("priority", 0, "Priority; higher wins")
	cmd.Flags().StringP("topic", "t", "none", "Topic: none, emotion, family, desire, reason, hobby")
	cmd.Flags().IntP("weight", "w", 1, "Context weight")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().Bool("inactive", false, "Store the rule disabled")

	cmd.MarkFlagRequired("pattern")

	rulesCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")
	pattern, _ := cmd.Flags().GetString("pattern")
	priority, _ := cmd.Flags().GetInt("priority")
	topicStr, _ := cmd.Flags().GetString("topic")
	weight, _ := cmd.Flags().GetInt("weight")
	description, _ := cmd.Flags().GetString("description")
	inactive, _ := cmd.Flags().GetBool("inactive")

	topic, err := model.ParseTopic(topicStr)
	if err != nil {
		exitErr("put", err)
	}

	var responses []string
	for _, r := range args {
		if r = strings.TrimSpace(r); r != "" {
			responses = append(responses, r)
		}
	}
	if len(responses) == 0 {
		exitErr("put", fmt.Errorf("at least one response is required"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sr, err := s.Put(cmd.Context(), store.PutParams{
		Set: cfg.Set,
		Rule: model.Rule{
			ID:            key,
			Description:   description,
			Pattern:       pattern,
			Priority:      priority,
			Topic:         topic,
			Responses:     responses,
			ContextWeight: weight,
			Active:        !inactive,
		},
	})
	if err != nil {
		exitErr("put", err)
	}

	printJSON(cmd, sr)
}
