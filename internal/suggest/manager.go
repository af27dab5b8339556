// Package suggest routes synonym requests to backends. A Manager owns the
// live backend of one family; a Suggester holds one Manager per family and
// decides which of them serves a request.
package suggest

import (
	"context"
	"fmt"
	"io"

	"synrec/internal/backend"
	ilogger "synrec/internal/logger"
)

// Manager binds exactly one live backend from a single family. It performs
// no locking; callers serialise concurrent use.
type Manager struct {
	factory *backend.Factory
	live    backend.Backend
	service string
	model   string
}

// NewManager builds the initial backend eagerly and fails if it cannot be
// constructed.
func NewManager(ctx context.Context, factory *backend.Factory, service, model string) (*Manager, error) {
	live, err := factory.Build(ctx, service, model)
	if err != nil {
		return nil, err
	}
	ilogger.LogInfo(fmt.Sprintf("%s manager bound to %q", factory.Registry().Family(), service))
	return &Manager{factory: factory, live: live, service: service, model: model}, nil
}

// Suggest forwards to the live backend. Errors are returned unchanged.
func (m *Manager) Suggest(ctx context.Context, word string, params backend.Params) (backend.Result, error) {
	res, err := m.live.Suggest(ctx, word, params)
	if err != nil {
		return backend.Result{}, err
	}
	if res.Synonyms == nil {
		res.Synonyms = []string{}
	}
	return res, nil
}

// Switch builds the backend for service and replaces the live one only once
// construction succeeded. It always rebuilds, even for the current service.
// A replaced backend that implements io.Closer is closed.
func (m *Manager) Switch(ctx context.Context, service, model string) error {
	next, err := m.factory.Build(ctx, service, model)
	if err != nil {
		ilogger.LogWarn(fmt.Sprintf("switch %s manager to %q failed, keeping %q: %v", m.Family(), service, m.service, err))
		return err
	}

	prev, prevService := m.live, m.service
	m.live, m.service, m.model = next, service, model
	ilogger.LogInfo(fmt.Sprintf("%s manager switched %q -> %q (model=%q)", m.Family(), prevService, service, model))

	if c, ok := prev.(io.Closer); ok {
		if err := c.Close(); err != nil {
			ilogger.LogWarn(fmt.Sprintf("close %q backend: %v", prevService, err))
		}
	}
	return nil
}

func (m *Manager) Service() string { return m.service }

// Model is the override the live backend was built with, "" for defaults.
func (m *Manager) Model() string { return m.model }

func (m *Manager) Family() backend.Family { return m.factory.Registry().Family() }

// Handles reports whether service belongs to this manager's family.
func (m *Manager) Handles(service string) bool { return m.factory.Registry().Has(service) }
