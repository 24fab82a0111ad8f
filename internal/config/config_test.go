package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath(), cfg.DB)
	assert.Equal(t, "default", cfg.Set)
	assert.Equal(t, 2, cfg.Context.MaxTurns)
	assert.Equal(t, 30*time.Second, cfg.Context.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Match.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eliza.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules: /tmp/regeln.json
context:
  max_turns: 3
  timeout: 45s
log:
  level: info
`), 0o644))

	t.Setenv("ELIZA_CONTEXT_TIMEOUT", "1m")
	t.Setenv("ELIZA_DB", filepath.Join(dir, "x.db"))

	cfg, err := Load(path, map[string]interface{}{"set": "therapie"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/regeln.json", cfg.Rules)
	assert.Equal(t, 3, cfg.Context.MaxTurns)
	assert.Equal(t, time.Minute, cfg.Context.Timeout, "env overrides file")
	assert.Equal(t, filepath.Join(dir, "x.db"), cfg.DB)
	assert.Equal(t, "therapie", cfg.Set)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Match.Timeout, "untouched defaults survive")
}

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eliza.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"context":{"max_turns":4}}`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Context.MaxTurns)
	assert.Equal(t, 30*time.Second, cfg.Context.Timeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Load("eliza.toml", nil)
	assert.Error(t, err)

	_, err = Load("", map[string]interface{}{"context.max_turns": 0})
	assert.Error(t, err)

	_, err = Load("", map[string]interface{}{"log.level": "loud"})
	assert.Error(t, err)
}
