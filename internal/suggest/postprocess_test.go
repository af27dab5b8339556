package suggest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		target string
		in     []string
		top    int
		want   []string
	}{
		{"trims and drops empties", "happy", []string{" glad ", "", "  ", "joyful"}, 0, []string{"glad", "joyful"}},
		{"drops target", "Happy", []string{"happy", "HAPPY", "glad"}, 0, []string{"glad"}},
		{"dedupes keeping first", "x", []string{"Glad", "glad", "cheerful", "GLAD"}, 0, []string{"Glad", "cheerful"}},
		{"top", "x", []string{"a", "b", "c"}, 2, []string{"a", "b"}},
		{"nil input", "x", nil, 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Clean(tt.target, tt.in, tt.top)); diff != "" {
				t.Fatalf("Clean mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
