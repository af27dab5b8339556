package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	config "synrec/internal/config"
)

// Factory builds backends of one family from a Registry and the settings
// captured at creation. It never retries.
type Factory struct {
	registry *Registry
	settings config.Settings
	client   *http.Client
}

// NewFactory returns a Factory using an HTTP client derived from settings.
func NewFactory(registry *Registry, settings config.Settings) *Factory {
	return NewFactoryWithClient(registry, settings, settings.HTTPClient())
}

func NewFactoryWithClient(registry *Registry, settings config.Settings, client *http.Client) *Factory {
	if client == nil {
		client = settings.HTTPClient()
	}
	return &Factory{registry: registry, settings: settings, client: client}
}

func (f *Factory) Registry() *Registry { return f.registry }

// Build constructs the backend registered under id. The model override is
// passed only to entries that accept one. Unknown ids fail with an
// *UnsupportedServiceError, constructor failures with a *ConstructionError.
func (f *Factory) Build(ctx context.Context, id, model string) (Backend, error) {
	entry, err := f.registry.Resolve(id)
	if err != nil {
		return nil, err
	}

	opts := Options{Settings: f.settings, Client: f.client}
	model = strings.TrimSpace(model)
	if entry.AcceptsModel {
		opts.Model = model
	} else if model != "" {
		logDebugFn(fmt.Sprintf("%s ignores model override %q", id, model))
	}

	b, err := entry.New(ctx, opts)
	if err != nil {
		var ce *ConstructionError
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, &ConstructionError{Service: id, Err: err}
	}
	if b == nil {
		return nil, &ConstructionError{Service: id, Err: errors.New("constructor returned no backend")}
	}

	logDebugFn(fmt.Sprintf("built %s backend %q (model=%q)", f.registry.Family(), id, opts.Model))
	return b, nil
}
