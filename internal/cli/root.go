// Package cli implements the eliza CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/eliza/internal/config"
	"github.com/rcliao/eliza/internal/engine"
	"github.com/rcliao/eliza/internal/logging"
	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/ruleset"
	"github.com/rcliao/eliza/internal/store"
)

var (
	configPath string
	dbPath     string
	setName    string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "eliza",
	Short: "Rule-based conversational responder",
	Long:  "A small ELIZA: prioritized pattern rules, pronoun reflection and a decaying topic memory.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]interface{}{}
		if dbPath != "" {
			overrides["db"] = dbPath
		}
		if setName != "" {
			overrides["set"] = setName
		}

		var err error
		cfg, err = config.Load(configPath, overrides)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (yaml or json)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $ELIZA_DB or ~/.eliza/rules.db)")
	RootCmd.PersistentFlags().StringVarP(&setName, "set", "s", "", "Rule set name (default: $ELIZA_SET or \"default\")")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DB)
}

// loadRules picks the rules for a conversation: an explicit rule file first,
// then the configured stored set, then the built-in rules.
func loadRules(ctx context.Context, rulesPath, dbPath, set string) ([]model.Rule, string, error) {
	if rulesPath != "" {
		rs, err := ruleset.LoadFile(rulesPath)
		if err != nil {
			return nil, "", err
		}
		return rs.Rules, rulesPath, nil
	}

	if _, err := os.Stat(dbPath); err == nil {
		s, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, "", err
		}
		defer s.Close()
		rules, err := s.Rules(ctx, set)
		if err != nil {
			return nil, "", err
		}
		if len(rules) > 0 {
			return rules, fmt.Sprintf("%s#%s", dbPath, set), nil
		}
		logger.Warn("rule set is empty or missing, using built-in rules",
			zap.String("set", set), zap.String("db", dbPath))
	}

	return ruleset.Default().Rules, "builtin", nil
}

func newEngine(cmd *cobra.Command, rulesPath string) (*engine.Engine, error) {
	rules, source, err := loadRules(cmd.Context(), rulesPath, cfg.DB, cfg.Set)
	if err != nil {
		return nil, err
	}

	e, err := engine.New(rules,
		engine.WithLogger(logger),
		engine.WithDecay(cfg.Context.MaxTurns, cfg.Context.Timeout),
		engine.WithMatchTimeout(cfg.Match.Timeout),
	)
	if errors.Is(err, engine.ErrNoRules) {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("rules loaded", zap.String("source", source), zap.Int("rules", e.Rules()), zap.Int("skipped", e.Skipped()))
	return e, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
