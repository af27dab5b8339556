// Package abbrev loads medical abbreviation tables and expands or
// contracts terms in free text.
package abbrev

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Pair is one table row.
type Pair struct {
	Abbr     string `json:"abbr"`
	FullForm string `json:"full_form"`
}

// Table maps terms in both directions: an abbreviation to its full form and
// the full form back to the abbreviation. Keys are lowercase. When two rows
// claim the same key, the later one wins.
type Table struct {
	pairs  []Pair
	lookup map[string]string
}

var ErrMalformedLine = errors.New("malformed abbreviation line")

func NewTable(pairs ...Pair) *Table {
	t := &Table{lookup: make(map[string]string, len(pairs)*2)}
	for _, p := range pairs {
		t.Add(p)
	}
	return t
}

// Add registers p in both directions. Rows with an empty side are ignored.
func (t *Table) Add(p Pair) {
	p.Abbr = strings.TrimSpace(p.Abbr)
	p.FullForm = strings.TrimSpace(p.FullForm)
	if p.Abbr == "" || p.FullForm == "" {
		return
	}
	t.pairs = append(t.pairs, p)
	t.lookup[strings.ToLower(p.Abbr)] = p.FullForm
	t.lookup[strings.ToLower(p.FullForm)] = p.Abbr
}

// Lookup returns the counterpart of term, matched case-insensitively.
func (t *Table) Lookup(term string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.lookup[strings.ToLower(term)]
	return v, ok
}

// Variants returns term followed by its counterpart in the table, if any.
// Context lookups use it to find a word after Replace has swapped it.
func (t *Table) Variants(term string) []string {
	out := []string{term}
	if alt, ok := t.Lookup(term); ok {
		out = append(out, alt)
	}
	return out
}

func (t *Table) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

func (t *Table) Len() int { return len(t.pairs) }

// Load reads a table file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open abbreviation table: %w", err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads one tuple per line, `('abbr', 'full form')`, as written by
// Save. Blank lines are skipped.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		p, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		t.Add(p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read abbreviation table: %w", err)
	}
	return t, nil
}

func parseLine(line string) (Pair, error) {
	if !strings.HasPrefix(line, "(") || !strings.HasSuffix(line, ")") {
		return Pair{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	rest := strings.TrimSpace(line[1 : len(line)-1])

	abbr, rest, err := readQuoted(rest)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ",") {
		return Pair{}, fmt.Errorf("%w: missing separator in %q", ErrMalformedLine, line)
	}
	full, rest, err := readQuoted(strings.TrimSpace(rest[1:]))
	if err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	if strings.TrimSpace(rest) != "" {
		return Pair{}, fmt.Errorf("%w: trailing data in %q", ErrMalformedLine, line)
	}
	return Pair{Abbr: abbr, FullForm: full}, nil
}

// readQuoted consumes one single- or double-quoted literal with backslash
// escapes from the start of s.
func readQuoted(s string) (string, string, error) {
	if s == "" || (s[0] != '\'' && s[0] != '"') {
		return "", s, fmt.Errorf("expected quoted string at %q", s)
	}
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		case c == quote:
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated string %q", s)
}

// Save writes the table atomically in the format Parse reads.
func (t *Table) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".abbrev-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := t.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}

// Write emits one tuple line per pair.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range t.pairs {
		if _, err := fmt.Fprintf(bw, "(%s, %s)\n", quote(p.Abbr), quote(p.FullForm)); err != nil {
			return fmt.Errorf("write abbreviation table: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write abbreviation table: %w", err)
	}
	return nil
}

// quote prefers single quotes, switching to double quotes when s holds a
// single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case q, '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}
