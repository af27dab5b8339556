package utils

import (
	"strings"
	"unicode"
)

// Clip shortens s to at most maxRunes runes, marking the cut with "...".
// It never splits a UTF-8 sequence.
func Clip(s string, maxRunes int) string {
	if maxRunes <= 0 || s == "" {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes < 4 {
		return string(runes[:1])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// StripControl removes ANSI escape sequences and control characters, keeping
// newlines and tabs. Local model runtimes occasionally emit both.
func StripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inEscape := false
	for i, r := range s {
		if r == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == '[' {
				continue
			}
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseSpace trims s and folds every whitespace run into a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
