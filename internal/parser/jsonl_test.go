package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type chunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func TestReadLinesSkipsBlankLines(t *testing.T) {
	input := "a\n\n  \nb\r\nc"
	var got []string
	err := ReadLines(strings.NewReader(input), func(line []byte) error {
		got = append(got, string(line))
		return nil
	})
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLinesLongLineAcrossBuffer(t *testing.T) {
	long := strings.Repeat("x", jsonLineReaderSize*2+10)
	var got []int
	err := ReadLines(strings.NewReader(long+"\nshort\n"), func(line []byte) error {
		got = append(got, len(line))
		return nil
	})
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if diff := cmp.Diff([]int{len(long), 5}, got); diff != "" {
		t.Errorf("line lengths mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLinesStopAndCallbackError(t *testing.T) {
	calls := 0
	err := ReadLines(strings.NewReader("1\n2\n3\n"), func([]byte) error {
		calls++
		return ErrStop
	})
	if err != nil || calls != 1 {
		t.Fatalf("ErrStop: err=%v calls=%d, want nil and 1", err, calls)
	}

	boom := errors.New("boom")
	err = ReadLines(strings.NewReader("1\n2\n"), func([]byte) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("ReadLines() error = %v, want %v", err, boom)
	}
}

func TestDecodeStream(t *testing.T) {
	input := `{"response":"glad","done":false}
{"response":", joyful","done":false}
{"response":"","done":true}
`
	var sb strings.Builder
	done := false
	err := Decode(strings.NewReader(input), func(c chunk) error {
		sb.WriteString(c.Response)
		done = c.Done
		return nil
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if sb.String() != "glad, joyful" || !done {
		t.Fatalf("Decode() text=%q done=%v", sb.String(), done)
	}
}

func TestDecodeMalformedLine(t *testing.T) {
	err := Decode(strings.NewReader("{\"response\":\"ok\"}\nnot json\n"), func(chunk) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "not json") {
		t.Fatalf("Decode() error = %v, want decode failure mentioning the line", err)
	}
}
