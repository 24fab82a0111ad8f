// Package config loads eliza settings from defaults, an optional file and
// ELIZA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "ELIZA_"
	// Delimiter is the key delimiter for nested config.
	Delimiter = "."
)

// Config is the full application configuration.
type Config struct {
	DB      string        `mapstructure:"db" validate:"required"`
	Rules   string        `mapstructure:"rules"`
	Set     string        `mapstructure:"set" validate:"required"`
	Context ContextConfig `mapstructure:"context"`
	Match   MatchConfig   `mapstructure:"match"`
	Log     LogConfig     `mapstructure:"log"`
}

// ContextConfig is the decay policy of the context stack.
type ContextConfig struct {
	MaxTurns int           `mapstructure:"max_turns" validate:"min=1"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// MatchConfig bounds pattern evaluation.
type MatchConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// DefaultDBPath returns ~/.eliza/rules.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".eliza", "rules.db")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"db":                DefaultDBPath(),
		"rules":             "",
		"set":               "default",
		"context.max_turns": 2,
		"context.timeout":   "30s",
		"match.timeout":     "100ms",
		"log.level":         "warn",
		"log.format":        "console",
	}
}

var validate = validator.New()

// Load builds the configuration with the following priority:
// 1. overrides (command line flags)
// 2. environment variables
// 3. configuration file
// 4. defaults
func Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(Delimiter)

	if err := k.Load(confmap.Provider(defaults(), Delimiter), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		parser, err := parserFor(configPath)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// ELIZA_CONTEXT_MAX_TURNS -> context.max_turns, ELIZA_DB -> db
	if err := k.Load(env.Provider(EnvPrefix, Delimiter, func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", Delimiter, 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, Delimiter), nil); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", path)
	}
}
