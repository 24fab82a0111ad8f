package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflect(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		in, want string
	}{
		{"ich bin müde", "du bist müde"},
		{"Mein Hund mag mich", "dein Hund mag dich"},
		{"  du   und  dir ", "ich und mir"},
		{"keine pronomen hier", "keine pronomen hier"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Reflect(tt.in), "reflect(%q)", tt.in)
	}
}

func TestReflectSymmetricPairs(t *testing.T) {
	table := DefaultTable()
	for word := range table.Pairs() {
		assert.Equal(t, word, table.Reflect(table.Reflect(word)), "round trip of %q", word)
	}
	assert.Equal(t, "ich bin", table.Reflect(table.Reflect("ich bin")))
	assert.Equal(t, "dein", table.Reflect("mein"))
	assert.Equal(t, "mein", table.Reflect(table.Reflect("mein")))
}

func TestLookupPassthrough(t *testing.T) {
	table := NewTable(map[string]string{"I": "you"})
	assert.Equal(t, "you", table.Lookup("i"))
	assert.Equal(t, "you", table.Lookup("I"))
	assert.Equal(t, "Katze", table.Lookup("Katze"))
}
