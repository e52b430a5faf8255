// Package jsoncolor syntax-highlights JSON for terminal output.
package jsoncolor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/commentrank/internal/core/styles"
)

var literals = []struct {
	word  string
	style lipgloss.Style
}{
	{"true", styles.TextSecondary},
	{"false", styles.TextSecondary},
	{"null", styles.TextError},
}

// Colorize pretty-prints JSON bytes with keys, strings, numbers and literals
// colored. Invalid JSON is returned unchanged.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}

	var out strings.Builder
	raw := buf.String()

	for i := 0; i < len(raw); {
		ch := raw[i]
		switch {
		case ch == '"':
			end := findStringEnd(raw, i)
			str := raw[i : end+1]

			rest := strings.TrimLeft(raw[end+1:], " \t")
			if strings.HasPrefix(rest, ":") {
				out.WriteString(styles.TextPrimary.Render(str))
			} else {
				out.WriteString(styles.TextSuccess.Render(str))
			}
			i = end + 1

		case ch == ':':
			out.WriteString(styles.TextMuted.Render(":"))
			i++

		case ch >= '0' && ch <= '9' || ch == '-':
			end := i + 1
			for end < len(raw) && strings.IndexByte("0123456789.eE+-", raw[end]) >= 0 {
				end++
			}
			out.WriteString(styles.TextWarning.Render(raw[i:end]))
			i = end

		default:
			if n := writeLiteral(&out, raw[i:]); n > 0 {
				i += n
				continue
			}
			out.WriteByte(ch)
			i++
		}
	}

	return out.String()
}

func writeLiteral(out *strings.Builder, s string) int {
	for _, lit := range literals {
		if strings.HasPrefix(s, lit.word) {
			out.WriteString(lit.style.Render(lit.word))
			return len(lit.word)
		}
	}
	return 0
}

// findStringEnd returns the index of the closing quote for a JSON string starting at pos.
func findStringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			return i
		}
	}
	return len(s) - 1
}
