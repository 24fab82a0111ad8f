package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultMatchTimeout bounds a single pattern evaluation.
const DefaultMatchTimeout = 100 * time.Millisecond

// compilePattern compiles a rule pattern in the .NET dialect (Unicode \w,
// look-arounds), case-insensitively.
func compilePattern(pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// normalize lower-cases input and composes it to NFC so that decomposed
// umlauts match patterns written with precomposed ones.
func normalize(input string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(input))
}

// formatTemplate substitutes positional placeholders {0}, {1}, ... with
// args. "{{" and "}}" are literal braces. Alignment and format suffixes
// ({0,5} or {0:x}) are accepted and ignored. A placeholder whose index is out
// of range is left as written, and so is an unmatched "{".
func formatTemplate(template string, args []string) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			field := template[i+1 : i+end]
			if strings.IndexByte(field, '{') >= 0 {
				// Stray brace: keep it and rescan from the next byte.
				b.WriteByte('{')
				continue
			}
			if idx, ok := placeholderIndex(field); ok && idx < len(args) {
				b.WriteString(args[idx])
			} else {
				b.WriteString(template[i : i+end+1])
			}
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func placeholderIndex(field string) (int, bool) {
	if cut := strings.IndexAny(field, ",:"); cut >= 0 {
		field = field[:cut]
	}
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// maxPlaceholder returns the highest placeholder index in template, or -1.
func maxPlaceholder(template string) int {
	highest := -1
	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			break
		}
		field := template[i+1 : i+end]
		if strings.IndexByte(field, '{') >= 0 {
			continue
		}
		if idx, ok := placeholderIndex(field); ok && idx > highest {
			highest = idx
		}
		i += end
	}
	return highest
}
