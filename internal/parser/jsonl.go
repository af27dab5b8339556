// Package parser reads newline-delimited JSON streams such as the ones local
// model runtimes emit while generating.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"
)

const (
	jsonLineReaderSize = 64 * 1024
	jsonLineMaxBytes   = 10 * 1024 * 1024
	jsonLinePreview    = 256
)

// ErrLineTooLong is returned when a single line exceeds the 10 MiB limit.
var ErrLineTooLong = errors.New("json line exceeds limit")

// ErrStop may be returned by a callback to end reading without error.
var ErrStop = errors.New("stop reading")

type lineScratch struct {
	buf []byte
}

const maxPooledScratchCap = 1 << 20

var scratchPool = sync.Pool{
	New: func() any {
		return &lineScratch{buf: make([]byte, 0, jsonLineReaderSize)}
	},
}

// ReadLines calls fn with every non-blank line of r, without the trailing
// newline. The slice passed to fn is only valid during the call.
func ReadLines(r io.Reader, fn func(line []byte) error) error {
	reader := bufio.NewReaderSize(r, jsonLineReaderSize)
	scratch := scratchPool.Get().(*lineScratch)
	defer func() {
		if cap(scratch.buf) > maxPooledScratchCap {
			scratch.buf = nil
		} else {
			scratch.buf = scratch.buf[:0]
		}
		scratchPool.Put(scratch)
	}()

	for {
		line, err := readLine(reader, scratch)
		if len(line) > 0 {
			if cbErr := fn(line); cbErr != nil {
				if errors.Is(cbErr, ErrStop) {
					return nil
				}
				return cbErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func readLine(reader *bufio.Reader, scratch *lineScratch) ([]byte, error) {
	scratch.buf = scratch.buf[:0]
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(scratch.buf)+len(chunk) > jsonLineMaxBytes {
			return nil, fmt.Errorf("%w (%d bytes)", ErrLineTooLong, jsonLineMaxBytes)
		}
		scratch.buf = append(scratch.buf, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimSpace(scratch.buf), err
	}
}

// Decode reads r line by line, unmarshalling each line into a fresh T.
func Decode[T any](r io.Reader, fn func(T) error) error {
	return ReadLines(r, func(line []byte) error {
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return fmt.Errorf("decode json line %q: %w", preview(line), err)
		}
		return fn(v)
	})
}

func preview(line []byte) string {
	if len(line) <= jsonLinePreview {
		return string(line)
	}
	return string(line[:jsonLinePreview]) + "..."
}
