package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"synrec/internal/backend"
	config "synrec/internal/config"
	ilogger "synrec/internal/logger"
	"synrec/internal/suggest"
)

// fakeBackend answers from a fixed table keyed by service.
type fakeBackend struct {
	service string
	model   string
	answer  []string
	err     error
	rec     *recorder
}

func (b *fakeBackend) Suggest(_ context.Context, word string, params backend.Params) (backend.Result, error) {
	b.rec.call(b.service, word, params)
	if b.err != nil {
		return backend.Result{}, b.err
	}
	return backend.NewResult(b.answer), nil
}

// recorder is shared by all fake constructors of a test; compare runs them
// concurrently.
type recorder struct {
	mu      sync.Mutex
	builds  map[string]int
	models  map[string][]string
	calls   []string
	params  []backend.Params
	answers map[string][]string
	failNew map[string]error
	failRun map[string]error
}

func newRecorder() *recorder {
	return &recorder{
		builds:  map[string]int{},
		models:  map[string][]string{},
		answers: map[string][]string{},
		failNew: map[string]error{},
		failRun: map[string]error{},
	}
}

func (r *recorder) call(service, word string, params backend.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, service+":"+word)
	r.params = append(r.params, params)
}

func (r *recorder) constructor(service string) backend.Constructor {
	return func(_ context.Context, opts backend.Options) (backend.Backend, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.builds[service]++
		r.models[service] = append(r.models[service], opts.Model)
		if err := r.failNew[service]; err != nil {
			return nil, err
		}
		return &fakeBackend{service: service, model: opts.Model, answer: r.answers[service], err: r.failRun[service], rec: r}, nil
	}
}

func (r *recorder) factories(settings config.Settings) suggest.Factories {
	api := backend.NewRegistry(backend.FamilyAPI)
	_ = api.Register("thesaurus", backend.Entry{New: r.constructor("thesaurus"), Description: "fake thesaurus"})
	model := backend.NewRegistry(backend.FamilyModel)
	_ = model.Register("huggingface", backend.Entry{New: r.constructor("huggingface"), AcceptsModel: true, Description: "fake hf"})
	_ = model.Register("openai", backend.Entry{New: r.constructor("openai"), Description: "fake openai"})
	return suggest.Factories{
		API:   backend.NewFactory(api, settings),
		Model: backend.NewFactory(model, settings),
	}
}

// stubEnv isolates HOME, TMPDIR, and every hook the commands use.
func stubEnv(t *testing.T) *recorder {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("TMPDIR", t.TempDir())
	for _, name := range []string{
		"SYNREC_THESAURUS_API_KEY", "THESAURUS_API_KEY",
		"SYNREC_OPENAI_API_KEY", "OPENAI_AUTH_KEY", "OPENAI_API_KEY",
		"SYNREC_DEFAULT_MODEL", "SYNREC_DEFAULT_MODEL_SERVICE", "SYNREC_KEEP_LOG",
	} {
		t.Setenv(name, "")
	}

	rec := newRecorder()
	origFactories := newFactoriesFn
	origCleanup := cleanupOldLogsFn
	newFactoriesFn = rec.factories
	cleanupOldLogsFn = func() (ilogger.CleanupStats, error) { return ilogger.CleanupStats{}, nil }
	t.Cleanup(func() {
		newFactoriesFn = origFactories
		cleanupOldLogsFn = origCleanup
	})
	return rec
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeTable(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abbreviation.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

var errFake = errors.New("fake failure")
