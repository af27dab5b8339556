// Package textctx cuts the context around a target word out of a text.
package textctx

import (
	"regexp"
	"strings"
	"unicode"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*\s+`)

// Window returns the part of text around the first occurrence of target.
// With sentences set it keeps the sentence holding target plus n sentences
// on each side; otherwise n words on each side. Matching is whole-word and
// case-insensitive. ok is false when target does not occur.
func Window(text, target string, sentences bool, n int) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" || strings.TrimSpace(text) == "" {
		return "", false
	}
	if n < 0 {
		n = 0
	}
	if sentences {
		return sentenceWindow(text, target, n)
	}
	return wordWindow(text, target, n)
}

// WindowAny returns the window around the first of targets that occurs in
// text, trying them in order.
func WindowAny(text string, targets []string, sentences bool, n int) (string, bool) {
	for _, target := range targets {
		if w, ok := Window(text, target, sentences, n); ok {
			return w, true
		}
	}
	return "", false
}

// SplitSentences breaks text after terminal punctuation followed by space.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := collapse(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := collapse(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func sentenceWindow(text, target string, n int) (string, bool) {
	all := SplitSentences(text)
	for i, s := range all {
		if containsWord(s, target) {
			lo, hi := clamp(i-n, len(all)), clamp(i+n+1, len(all))
			return strings.Join(all[lo:hi], " "), true
		}
	}
	return "", false
}

func wordWindow(text, target string, n int) (string, bool) {
	words := strings.Fields(text)
	parts := strings.Fields(target)
	for i := 0; i+len(parts) <= len(words); i++ {
		if matchAt(words, i, parts) {
			lo, hi := clamp(i-n, len(words)), clamp(i+len(parts)+n, len(words))
			return strings.Join(words[lo:hi], " "), true
		}
	}
	return "", false
}

func matchAt(words []string, i int, parts []string) bool {
	for j, p := range parts {
		if !strings.EqualFold(trimPunct(words[i+j]), trimPunct(p)) {
			return false
		}
	}
	return true
}

func containsWord(s, target string) bool {
	_, ok := wordWindow(s, target, 0)
	return ok
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clamp(i, limit int) int {
	if i < 0 {
		return 0
	}
	if i > limit {
		return limit
	}
	return i
}
