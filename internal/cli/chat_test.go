package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/eliza/internal/engine"
	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/store"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New([]model.Rule{{
		Pattern:       `ich fühle mich (\w+)`,
		Topic:         model.TopicEmotion,
		Responses:     []string{"Warum fühlst du dich {0}?"},
		ContextWeight: 2,
		Active:        true,
	}})
	require.NoError(t, err)
	return e
}

func TestChatLoop(t *testing.T) {
	in := strings.NewReader("Ich fühle mich müde\nDas Wetter\nexit\nnie gelesen\n")
	var out bytes.Buffer

	require.NoError(t, chat(in, &out, testEngine(t)))

	got := out.String()
	assert.Contains(t, got, "ELIZA: Hallo. Wie geht es dir?")
	assert.Contains(t, got, "(Tippe 'exit' zum Beenden)")
	assert.Contains(t, got, "DU: ELIZA: Warum fühlst du dich müde?")
	assert.Contains(t, got, "Du hast vorhin erwähnt, dass du dich müde fühlst.")
	assert.True(t, strings.HasSuffix(got, "ELIZA: Auf Wiedersehen.\n"))
	assert.Equal(t, 2, strings.Count(got, "ELIZA: ")-2, "two replies between greeting and farewell")
}

func TestChatStopsOnEmptyLineAndEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, chat(strings.NewReader("\nich fühle mich gut\n"), &out, testEngine(t)))
	assert.NotContains(t, out.String(), "gut?")

	out.Reset()
	require.NoError(t, chat(strings.NewReader("ich fühle mich gut"), &out, testEngine(t)))
	assert.Contains(t, out.String(), "Warum fühlst du dich gut?")
	assert.Contains(t, out.String(), "Auf Wiedersehen.")
}

func TestLoadRules(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "rules.db")

	// Nothing configured: built-in rules.
	rules, source, err := loadRules(ctx, "", dbPath, "default")
	require.NoError(t, err)
	assert.Equal(t, "builtin", source)
	assert.NotEmpty(t, rules)

	// A stored set wins over the built-in rules.
	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = s.Put(ctx, store.PutParams{Set: "eigene", Rule: model.Rule{
		ID: "x", Pattern: "x", Responses: []string{"y"}, Active: true,
	}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	rules, source, err = loadRules(ctx, "", dbPath, "eigene")
	require.NoError(t, err)
	assert.Equal(t, dbPath+"#eigene", source)
	require.Len(t, rules, 1)

	// An empty stored set falls back to the built-in rules, with a warning.
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })

	_, source, err = loadRules(ctx, "", dbPath, "leer")
	require.NoError(t, err)
	assert.Equal(t, "builtin", source)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "leer", logs.All()[0].ContextMap()["set"])

	// A rule file wins over everything.
	path := filepath.Join(dir, "r.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules":[{"pattern":"a","responses":["b"]},{"pattern":"c","responses":["d"]}]}`), 0o644))
	rules, source, err = loadRules(ctx, path, dbPath, "eigene")
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Len(t, rules, 2)

	_, _, err = loadRules(ctx, filepath.Join(dir, "fehlt.json"), dbPath, "eigene")
	assert.Error(t, err)
}
