package suggest

import (
	"context"
	"errors"
	"testing"

	"synrec/internal/backend"
)

func TestNewManagerBindsEagerly(t *testing.T) {
	f := newFixture(t, backend.FamilyModel, true, "huggingface")
	m, err := NewManager(context.Background(), f.factory(), "huggingface", "tiny")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if m.Service() != "huggingface" || m.Model() != "tiny" || m.Family() != backend.FamilyModel {
		t.Fatalf("state = %q %q %q", m.Service(), m.Model(), m.Family())
	}
	if f.builds["huggingface"] != 1 || f.last().model != "tiny" {
		t.Fatalf("builds = %v, model = %q", f.builds, f.last().model)
	}
}

func TestNewManagerFailsFast(t *testing.T) {
	f := newFixture(t, backend.FamilyAPI, false, "thesaurus")
	f.fail["thesaurus"] = errBoom

	if _, err := NewManager(context.Background(), f.factory(), "thesaurus", ""); !backend.IsConstruction(err) || !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want construction error wrapping cause", err)
	}
	if _, err := NewManager(context.Background(), f.factory(), "nope", ""); !backend.IsUnsupported(err) {
		t.Fatalf("err = %v, want unsupported", err)
	}
}

func TestManagerSuggestDoesNotMutateState(t *testing.T) {
	f := newFixture(t, backend.FamilyAPI, false, "thesaurus")
	m, err := NewManager(context.Background(), f.factory(), "thesaurus", "")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	live := m.live

	res, err := m.Suggest(context.Background(), "happy", nil)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if res.Synonyms == nil {
		t.Fatalf("nil synonyms must be normalised to empty")
	}
	if m.live != live || m.Service() != "thesaurus" || f.builds["thesaurus"] != 1 {
		t.Fatalf("Suggest changed manager state")
	}
}

func TestManagerSuggestPassesErrorsUnchanged(t *testing.T) {
	f := newFixture(t, backend.FamilyAPI, false, "thesaurus")
	m, err := NewManager(context.Background(), f.factory(), "thesaurus", "")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	want := &backend.InvocationError{Service: "thesaurus", Op: "request", Err: errBoom}
	f.last().err = want

	_, err = m.Suggest(context.Background(), "happy", nil)
	if err != want {
		t.Fatalf("err = %v, want the backend's error unchanged", err)
	}
}

func TestManagerSwitch(t *testing.T) {
	f := newFixture(t, backend.FamilyModel, true, "a", "b")
	m, err := NewManager(context.Background(), f.factory(), "a", "")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	first := f.last()

	if err := m.Switch(context.Background(), "b", "m2"); err != nil {
		t.Fatalf("Switch(b): %v", err)
	}
	if m.Service() != "b" || m.Model() != "m2" || f.builds["b"] != 1 {
		t.Fatalf("after switch: %q %q builds=%v", m.Service(), m.Model(), f.builds)
	}
	if !first.closed {
		t.Fatalf("replaced backend was not closed")
	}

	// Switching back rebuilds from scratch; nothing is cached.
	if err := m.Switch(context.Background(), "a", ""); err != nil {
		t.Fatalf("Switch(a): %v", err)
	}
	if f.builds["a"] != 2 {
		t.Fatalf("builds[a] = %d, want 2", f.builds["a"])
	}

	// Each switch call constructs exactly once, even to the current service.
	for i := 0; i < 2; i++ {
		if err := m.Switch(context.Background(), "a", ""); err != nil {
			t.Fatalf("Switch(a) again: %v", err)
		}
	}
	if f.builds["a"] != 4 {
		t.Fatalf("builds[a] = %d, want 4", f.builds["a"])
	}
}

func TestManagerSwitchFailurePreservesState(t *testing.T) {
	f := newFixture(t, backend.FamilyModel, true, "a", "b")
	m, err := NewManager(context.Background(), f.factory(), "a", "m1")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	live := m.live
	f.fail["b"] = errBoom

	err = m.Switch(context.Background(), "b", "m2")
	if !backend.IsConstruction(err) {
		t.Fatalf("err = %v, want construction error", err)
	}
	if m.live != live || m.Service() != "a" || m.Model() != "m1" {
		t.Fatalf("state changed after failed switch: %q %q", m.Service(), m.Model())
	}
	if live.(*countingBackend).closed {
		t.Fatalf("live backend closed after failed switch")
	}

	if err := m.Switch(context.Background(), "zzz", ""); !backend.IsUnsupported(err) {
		t.Fatalf("err = %v, want unsupported", err)
	}
	if m.live != live {
		t.Fatalf("state changed after unsupported switch")
	}
}
