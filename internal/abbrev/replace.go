package abbrev

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Replace swaps every whole word found in t for its counterpart. Matching
// ignores case; a word starting with an uppercase letter gets a replacement
// whose first letter is uppercase too. Other text is left as is.
func (t *Table) Replace(text string) string {
	if t == nil || len(t.lookup) == 0 {
		return text
	}
	upper := cases.Upper(language.Und)
	return wordPattern.ReplaceAllStringFunc(text, func(word string) string {
		repl, ok := t.Lookup(word)
		if !ok {
			return word
		}
		first, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(first) {
			return capitalizeFirst(upper, repl)
		}
		return repl
	})
}

func capitalizeFirst(upper cases.Caser, s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 1)
	b.WriteString(upper.String(string(r)))
	b.WriteString(s[size:])
	return b.String()
}
