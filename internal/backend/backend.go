package backend

import (
	"context"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Backend is the contract every synonym backend satisfies. Implementations
// may hold network clients or credentials; they are not safe for concurrent
// use unless documented otherwise.
type Backend interface {
	Suggest(ctx context.Context, word string, params Params) (Result, error)
}

// Result is the uniform payload returned for every request. Synonyms keeps
// the order the backend reported.
type Result struct {
	Synonyms []string `json:"synonyms"`
}

// NewResult copies synonyms into a Result whose slice is never nil.
func NewResult(synonyms []string) Result {
	out := make([]string, len(synonyms))
	copy(out, synonyms)
	return Result{Synonyms: out}
}

// Params is an open passthrough of per-call options. No key is required;
// backends read the ones they understand and ignore the rest.
type Params map[string]any

const (
	ParamContext     = "context"
	ParamTemperature = "temperature"
	ParamMaxTokens   = "max_tokens"
	ParamLimit       = "limit"
)

// Text returns the trimmed string value under key, or "".
func (p Params) Text(key string) string {
	v, _ := p[key].(string)
	return strings.TrimSpace(v)
}

// Float returns the numeric value under key. Strings are parsed so values
// coming from CLI flags behave like JSON numbers.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns the value under key truncated to an int.
func (p Params) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

var (
	logDebugFn = func(string) {}
	logWarnFn  = func(string) {}
)

// SetLogFuncs configures optional logging hooks used by the backends.
// Callers can safely pass nil to disable a hook.
func SetLogFuncs(debugFn, warnFn func(string)) {
	if debugFn != nil {
		logDebugFn = debugFn
	} else {
		logDebugFn = func(string) {}
	}
	if warnFn != nil {
		logWarnFn = warnFn
	} else {
		logWarnFn = func(string) {}
	}
}
