package backend

import (
	"strings"
	"unicode"
)

// splitCandidates turns free-form model output into synonym candidates.
// Items are separated by commas, semicolons, or newlines; list markers such
// as "1." or "-" and surrounding quotes are removed. Order is kept and
// nothing is deduplicated here.
func splitCandidates(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(stripListMarker(strings.TrimSpace(f)))
		f = strings.Trim(f, "\"'`*")
		f = strings.TrimRight(strings.TrimSpace(f), ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func stripListMarker(s string) string {
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") || strings.HasPrefix(s, "• ") {
		_, rest, _ := strings.Cut(s, " ")
		return rest
	}
	i := 0
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[i+1:]
	}
	return s
}
