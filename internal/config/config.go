package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds the options of a single suggestion run.
type Config struct {
	Word       string
	Text       string
	Service    string
	Model      string
	Sentence   bool
	ContextLen int
	Abbrev     bool
	AbbrevFile string
	Fallback   []string
	Params     map[string]string
	Top        int
	JSON       bool
}

// Services returns the primary service followed by the fallbacks, without
// blanks or repeats.
func (c *Config) Services() []string {
	seen := make(map[string]struct{}, len(c.Fallback)+1)
	out := make([]string, 0, len(c.Fallback)+1)
	for _, s := range append([]string{c.Service}, c.Fallback...) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ExpandHome resolves a leading "~" against the user's home directory.
func ExpandHome(path string) (string, error) {
	raw := strings.TrimSpace(path)
	if raw != "~" && !strings.HasPrefix(raw, "~/") && !strings.HasPrefix(raw, "~\\") {
		return raw, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if raw == "~" {
		return home, nil
	}
	return filepath.Join(home, raw[2:]), nil
}
