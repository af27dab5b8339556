package suggest

import "strings"

// Clean tidies backend output for display. Blank entries, the target word
// and case-insensitive repeats are dropped; top > 0 caps the result.
func Clean(target string, synonyms []string, top int) []string {
	seen := map[string]struct{}{strings.ToLower(strings.TrimSpace(target)): {}}
	out := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if top > 0 && len(out) == top {
			break
		}
	}
	return out
}
