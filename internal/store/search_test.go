package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r := testRule("familie", "(mutter|vater)")
	r.Description = "Familienmitglieder"
	r.Responses = []string{"Erzähl mir mehr über deine Familie."}
	s.Put(ctx, PutParams{Set: "test", Rule: r})
	s.Put(ctx, PutParams{Set: "test", Rule: testRule("gefuehl", "ich fühle mich")})
	s.Put(ctx, PutParams{Set: "other", Rule: testRule("vater", "papa")})

	// Search by pattern
	results, err := s.Search(ctx, SearchParams{Query: "vater"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Search with set filter
	results, err = s.Search(ctx, SearchParams{Set: "test", Query: "vater"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "familie", results[0].ID)

	// Search by response text
	results, err = s.Search(ctx, SearchParams{Query: "Erzähl"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Search by description
	results, err = s.Search(ctx, SearchParams{Query: "Familienmitglieder"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchLatestVersionOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{Set: "s", Rule: testRule("k", "alt")})
	s.Put(ctx, PutParams{Set: "s", Rule: testRule("k", "neu")})

	results, err := s.Search(ctx, SearchParams{Query: "alt"})
	require.NoError(t, err)
	assert.Empty(t, results, "superseded version should not match")

	results, err = s.Search(ctx, SearchParams{Query: "neu"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
