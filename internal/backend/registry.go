package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	config "synrec/internal/config"
)

// Family groups backends that share a construction signature and
// lifecycle.
type Family string

const (
	FamilyAPI   Family = "api"
	FamilyModel Family = "model"
)

var (
	ErrServiceRegistered = errors.New("service already registered")
	ErrInvalidService    = errors.New("service identifier is required")
	ErrNilConstructor    = errors.New("constructor is nil")
)

// Options are handed to a Constructor. Model is only set for entries that
// accept a model override.
type Options struct {
	Model    string
	Settings config.Settings
	Client   *http.Client
}

// Constructor builds a live backend. A returned error means the backend is
// unusable, e.g. a missing credential or an unreachable model.
type Constructor func(ctx context.Context, opts Options) (Backend, error)

// Entry is one registered backend.
type Entry struct {
	New          Constructor
	AcceptsModel bool
	Description  string
}

// Registry maps identifiers to constructors for one family. Lookups are
// exact and case-sensitive. Register everything before handing the registry
// to a Factory; the registry does no locking.
type Registry struct {
	family  Family
	entries map[string]Entry
}

func NewRegistry(family Family) *Registry {
	return &Registry{family: family, entries: make(map[string]Entry)}
}

// Register adds entry under id.
func (r *Registry) Register(id string, entry Entry) error {
	if id == "" || strings.TrimSpace(id) != id {
		return fmt.Errorf("%w: %q", ErrInvalidService, id)
	}
	if entry.New == nil {
		return fmt.Errorf("register %q: %w", id, ErrNilConstructor)
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("register %q in %s family: %w", id, r.family, ErrServiceRegistered)
	}
	r.entries[id] = entry
	return nil
}

func (r *Registry) mustRegister(id string, entry Entry) {
	if err := r.Register(id, entry); err != nil {
		panic(err)
	}
}

// Resolve returns the entry for id or an *UnsupportedServiceError.
func (r *Registry) Resolve(id string) (Entry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, &UnsupportedServiceError{Service: id, Family: r.family}
	}
	return entry, nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Names returns the registered identifiers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Family() Family { return r.family }

// APIRegistry returns a fresh registry of the remote dictionary backends.
func APIRegistry() *Registry {
	r := NewRegistry(FamilyAPI)
	r.mustRegister(IDThesaurus, Entry{
		New:         NewThesaurusBackend,
		Description: "Merriam-Webster thesaurus API",
	})
	return r
}

// ModelRegistry returns a fresh registry of the generative backends.
func ModelRegistry() *Registry {
	r := NewRegistry(FamilyModel)
	r.mustRegister(IDHuggingFace, Entry{
		New:          NewHuggingFaceBackend,
		AcceptsModel: true,
		Description:  "Hugging Face inference API (text2text)",
	})
	r.mustRegister(IDLlama2, Entry{
		New:          NewLlamaBackend,
		AcceptsModel: true,
		Description:  "local Ollama runtime",
	})
	r.mustRegister(IDOpenAI, Entry{
		New:         NewOpenAIBackend,
		Description: "OpenAI chat completions",
	})
	return r
}
