package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubBackend struct{ synonyms []string }

func (s *stubBackend) Suggest(context.Context, string, Params) (Result, error) {
	return NewResult(s.synonyms), nil
}

func stubEntry() Entry {
	return Entry{New: func(context.Context, Options) (Backend, error) { return &stubBackend{}, nil }}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry(FamilyAPI)
	if err := r.Register("alpha", stubEntry()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := r.Resolve("alpha"); err != nil {
		t.Fatalf("Resolve(alpha): %v", err)
	}
	if !r.Has("alpha") || r.Has("Alpha") {
		t.Fatalf("Has must match identifiers exactly")
	}

	_, err := r.Resolve("beta")
	var ue *UnsupportedServiceError
	if !errors.As(err, &ue) {
		t.Fatalf("Resolve(beta) err = %v, want *UnsupportedServiceError", err)
	}
	if ue.Service != "beta" || ue.Family != FamilyAPI {
		t.Fatalf("unexpected error fields: %+v", ue)
	}
	if !errors.Is(err, ErrUnsupportedService) {
		t.Fatalf("errors.Is(ErrUnsupportedService) = false")
	}
}

func TestRegistryRejectsBadEntries(t *testing.T) {
	r := NewRegistry(FamilyModel)
	if err := r.Register("dup", stubEntry()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name  string
		id    string
		entry Entry
		want  error
	}{
		{"empty id", "", stubEntry(), ErrInvalidService},
		{"padded id", " dup ", stubEntry(), ErrInvalidService},
		{"nil constructor", "x", Entry{}, ErrNilConstructor},
		{"duplicate", "dup", stubEntry(), ErrServiceRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.id, tt.entry); !errors.Is(err, tt.want) {
				t.Fatalf("Register(%q) err = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestBundledRegistries(t *testing.T) {
	api := APIRegistry()
	if diff := cmp.Diff([]string{"thesaurus"}, api.Names()); diff != "" {
		t.Fatalf("api names mismatch (-want +got):\n%s", diff)
	}
	if api.Family() != FamilyAPI {
		t.Fatalf("api family = %q", api.Family())
	}

	model := ModelRegistry()
	if diff := cmp.Diff([]string{"huggingface", "llama2-7b", "openai"}, model.Names()); diff != "" {
		t.Fatalf("model names mismatch (-want +got):\n%s", diff)
	}

	for _, id := range model.Names() {
		if api.Has(id) {
			t.Fatalf("%q registered in both families", id)
		}
	}

	for id, want := range map[string]bool{"huggingface": true, "llama2-7b": true, "openai": false} {
		entry, err := model.Resolve(id)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", id, err)
		}
		if entry.AcceptsModel != want {
			t.Fatalf("%s AcceptsModel = %v, want %v", id, entry.AcceptsModel, want)
		}
	}

	// Fresh registries do not share state.
	if err := APIRegistry().Register("extra", stubEntry()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if APIRegistry().Has("extra") {
		t.Fatalf("APIRegistry must return a new registry each call")
	}
}
