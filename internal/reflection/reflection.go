// Package reflection swaps first- and second-person words in captured text.
package reflection

import "strings"

// Table maps a lower-case word to its reflected counterpart.
type Table struct {
	words map[string]string
}

// NewTable builds a table from pairs. Keys are lower-cased; lookups are
// case-insensitive.
func NewTable(pairs map[string]string) *Table {
	words := make(map[string]string, len(pairs))
	for k, v := range pairs {
		words[strings.ToLower(k)] = v
	}
	return &Table{words: words}
}

// DefaultTable returns the German pronoun pairs.
func DefaultTable() *Table {
	return NewTable(map[string]string{
		"ich":  "du",
		"du":   "ich",
		"mein": "dein",
		"dein": "mein",
		"mir":  "dir",
		"dir":  "mir",
		"mich": "dich",
		"dich": "mich",
		"bin":  "bist",
		"bist": "bin",
	})
}

// Lookup returns the reflection of word, or word itself when unmapped.
func (t *Table) Lookup(word string) string {
	if r, ok := t.words[strings.ToLower(word)]; ok {
		return r
	}
	return word
}

// Pairs returns a copy of the mapping.
func (t *Table) Pairs() map[string]string {
	out := make(map[string]string, len(t.words))
	for k, v := range t.words {
		out[k] = v
	}
	return out
}

// Reflect rewrites every whitespace-delimited token of text through the
// table and rejoins the tokens with single spaces.
func (t *Table) Reflect(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = t.Lookup(w)
	}
	return strings.Join(words, " ")
}
