package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Logger writes JSON lines to a per-process file in the temp directory.
type Logger struct {
	path   string
	file   *os.File
	zl     zerolog.Logger
	mu     sync.Mutex
	closed atomic.Bool
}

// NewLogger opens $TMPDIR/synrec-<pid>.log.
func NewLogger() (*Logger, error) {
	return NewLoggerWithSuffix("")
}

// NewLoggerWithSuffix opens $TMPDIR/synrec-<pid>-<suffix>.log. The suffix is
// sanitised so it cannot escape the temp directory.
func NewLoggerWithSuffix(suffix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%d", AppName, os.Getpid())
	if s := SanitizeLogSuffix(suffix); s != "" {
		name += "-" + s
	}
	path := filepath.Join(os.TempDir(), name+".log")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	l := &Logger{path: path, file: f}
	l.zl = zerolog.New(zerolog.SyncWriter(f)).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
	return l, nil
}

// SanitizeLogSuffix keeps letters, digits, '-' and '_' and caps the length.
func SanitizeLogSuffix(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 64 {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}

func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Logger) Debug(msg string) { l.write(zerolog.DebugLevel, msg) }
func (l *Logger) Info(msg string)  { l.write(zerolog.InfoLevel, msg) }
func (l *Logger) Warn(msg string)  { l.write(zerolog.WarnLevel, msg) }
func (l *Logger) Error(msg string) { l.write(zerolog.ErrorLevel, msg) }

func (l *Logger) write(level zerolog.Level, msg string) {
	if l == nil || l.closed.Load() {
		return
	}
	l.zl.WithLevel(level).Msg(msg)
}

// Zerolog exposes the underlying logger for callers that want fields.
func (l *Logger) Zerolog() *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return &l.zl
}

// Flush syncs the log file to disk.
func (l *Logger) Flush() {
	if l == nil || l.closed.Load() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.file.Sync()
}

// Close stops writing and closes the file. The file stays on disk.
func (l *Logger) Close() error {
	if l == nil || !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// RemoveLogFile deletes the log file. Call after Close.
func (l *Logger) RemoveLogFile() error {
	if l == nil {
		return nil
	}
	err := removeLogFileFn(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

type logLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ExtractRecentErrors returns up to n of the latest warn/error entries,
// oldest first, formatted as "[LEVEL] message".
func (l *Logger) ExtractRecentErrors(n int) []string {
	if l == nil || n <= 0 {
		return nil
	}
	l.Flush()

	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line logLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		switch line.Level {
		case zerolog.WarnLevel.String(), zerolog.ErrorLevel.String():
			entries = append(entries, fmt.Sprintf("[%s] %s", strings.ToUpper(line.Level), line.Message))
		}
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries
}
