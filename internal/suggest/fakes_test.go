package suggest

import (
	"context"
	"errors"
	"testing"

	"synrec/internal/backend"
	config "synrec/internal/config"
)

// countingBackend records how it was built and what it was asked.
type countingBackend struct {
	service string
	model   string
	calls   []string
	err     error
	result  []string
	closed  bool
}

func (b *countingBackend) Suggest(_ context.Context, word string, _ backend.Params) (backend.Result, error) {
	b.calls = append(b.calls, word)
	if b.err != nil {
		return backend.Result{}, b.err
	}
	return backend.Result{Synonyms: b.result}, nil
}

func (b *countingBackend) Close() error {
	b.closed = true
	return nil
}

// registryFixture is a registry whose constructors count their calls and can
// be made to fail per service.
type registryFixture struct {
	registry *backend.Registry
	builds   map[string]int
	fail     map[string]error
	built    []*countingBackend
	result   map[string][]string
}

func newFixture(t *testing.T, family backend.Family, acceptsModel bool, ids ...string) *registryFixture {
	t.Helper()
	f := &registryFixture{
		registry: backend.NewRegistry(family),
		builds:   map[string]int{},
		fail:     map[string]error{},
		result:   map[string][]string{},
	}
	for _, id := range ids {
		id := id
		err := f.registry.Register(id, backend.Entry{
			AcceptsModel: acceptsModel,
			New: func(_ context.Context, opts backend.Options) (backend.Backend, error) {
				f.builds[id]++
				if err := f.fail[id]; err != nil {
					return nil, err
				}
				b := &countingBackend{service: id, model: opts.Model, result: f.result[id]}
				f.built = append(f.built, b)
				return b, nil
			},
		})
		if err != nil {
			t.Fatalf("Register(%q): %v", id, err)
		}
	}
	return f
}

func (f *registryFixture) factory() *backend.Factory {
	return backend.NewFactory(f.registry, config.DefaultSettings())
}

func (f *registryFixture) last() *countingBackend {
	if len(f.built) == 0 {
		return nil
	}
	return f.built[len(f.built)-1]
}

func (f *registryFixture) total() int {
	n := 0
	for _, c := range f.builds {
		n += c
	}
	return n
}

type suggesterFixture struct {
	api   *registryFixture
	model *registryFixture
	s     *Suggester
}

func newSuggesterFixture(t *testing.T) *suggesterFixture {
	t.Helper()
	api := newFixture(t, backend.FamilyAPI, false, "thesaurus", "wordnet")
	model := newFixture(t, backend.FamilyModel, true, "huggingface", "llama2-7b")
	api.result["thesaurus"] = []string{"glad", "cheerful"}

	s, err := New(context.Background(), Factories{API: api.factory(), Model: model.factory()}, Defaults{
		APIService:   "thesaurus",
		ModelService: "huggingface",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &suggesterFixture{api: api, model: model, s: s}
}

var errBoom = errors.New("boom")
