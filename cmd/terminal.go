package cmd

import (
	"strings"
	"unicode"
)

// sanitizeForTerminal drops control characters that could rewrite the
// terminal, keeping newlines and tabs of message bodies.
func sanitizeForTerminal(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}
