package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"synrec/internal/backend"
	config "synrec/internal/config"
)

// maxHintDistance bounds how far a typo may be from a registered id before
// no hint is offered.
const maxHintDistance = 3

// Factories carries one factory per family.
type Factories struct {
	API   *backend.Factory
	Model *backend.Factory
}

// Defaults are the services each manager is bound to at start.
type Defaults struct {
	APIService   string
	ModelService string
	Model        string
}

// Request is one synonym lookup. An empty Service means the default model
// service.
type Request struct {
	Word    string
	Service string
	Model   string
	Params  backend.Params
}

// Suggester routes each request to the family that registers its service.
// The API registry is consulted first. Like Manager it does no locking.
type Suggester struct {
	api       *Manager
	model     *Manager
	factories Factories
	defaults  Defaults
}

// New binds both managers to their defaults. Either failing aborts.
func New(ctx context.Context, factories Factories, defaults Defaults) (*Suggester, error) {
	api, err := NewManager(ctx, factories.API, defaults.APIService, "")
	if err != nil {
		return nil, fmt.Errorf("init api manager: %w", err)
	}
	model, err := NewManager(ctx, factories.Model, defaults.ModelService, defaults.Model)
	if err != nil {
		return nil, fmt.Errorf("init model manager: %w", err)
	}
	return &Suggester{api: api, model: model, factories: factories, defaults: defaults}, nil
}

// NewFromSettings wires the bundled registries with settings.
func NewFromSettings(ctx context.Context, settings config.Settings) (*Suggester, error) {
	return New(ctx, BundledFactories(settings), DefaultsFromSettings(settings))
}

// BundledFactories returns factories over the bundled registries that share
// one HTTP client.
func BundledFactories(settings config.Settings) Factories {
	client := settings.HTTPClient()
	return Factories{
		API:   backend.NewFactoryWithClient(backend.APIRegistry(), settings, client),
		Model: backend.NewFactoryWithClient(backend.ModelRegistry(), settings, client),
	}
}

// For returns the factory whose registry holds service.
func (f Factories) For(service string) (*backend.Factory, bool) {
	switch {
	case f.API != nil && f.API.Registry().Has(service):
		return f.API, true
	case f.Model != nil && f.Model.Registry().Has(service):
		return f.Model, true
	}
	return nil, false
}

func DefaultsFromSettings(settings config.Settings) Defaults {
	d := Defaults{
		APIService:   settings.DefaultAPIService,
		ModelService: settings.DefaultModelService,
		Model:        settings.DefaultModel,
	}
	if d.APIService == "" {
		d.APIService = config.DefaultAPIService
	}
	if d.ModelService == "" {
		d.ModelService = config.DefaultModelService
	}
	return d
}

// Suggest validates req, picks the owning manager, switches it when the
// service or model differs from what is bound, and forwards the call.
// Unknown services fail before any manager is touched.
func (s *Suggester) Suggest(ctx context.Context, req Request) (backend.Result, error) {
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return backend.Result{}, backend.ErrEmptyWord
	}
	service := s.ResolveService(req.Service)
	model := strings.TrimSpace(req.Model)

	m, err := s.route(service)
	if err != nil {
		return backend.Result{}, err
	}

	switch m.Family() {
	case backend.FamilyAPI:
		if service != m.Service() {
			if err := m.Switch(ctx, service, ""); err != nil {
				return backend.Result{}, err
			}
		}
	default:
		if service != m.Service() || model != m.Model() {
			if err := m.Switch(ctx, service, model); err != nil {
				return backend.Result{}, err
			}
		}
	}

	return m.Suggest(ctx, word, req.Params)
}

// ResolveService returns the identifier a request for service is served
// by: the default model service when service is empty, else service as is.
func (s *Suggester) ResolveService(service string) string {
	if service == "" {
		return s.defaults.ModelService
	}
	return service
}

func (s *Suggester) route(service string) (*Manager, error) {
	if s.api.Handles(service) {
		return s.api, nil
	}
	if s.model.Handles(service) {
		return s.model, nil
	}
	return nil, s.factories.Unsupported(service)
}

// Lookup reports which family registers service.
func (s *Suggester) Lookup(service string) (backend.Family, bool) {
	m, err := s.route(service)
	if err != nil {
		return "", false
	}
	return m.Family(), true
}

// Services lists every registered identifier per family.
func (s *Suggester) Services() map[backend.Family][]string {
	return map[backend.Family][]string{
		backend.FamilyAPI:   s.api.factory.Registry().Names(),
		backend.FamilyModel: s.model.factory.Registry().Names(),
	}
}

// Manager returns the manager of family, or nil.
func (s *Suggester) Manager(family backend.Family) *Manager {
	switch family {
	case backend.FamilyAPI:
		return s.api
	case backend.FamilyModel:
		return s.model
	}
	return nil
}

// Unsupported builds the error for an unknown service, with the closest
// registered identifier as a hint.
func (f Factories) Unsupported(service string) error {
	return &backend.UnsupportedServiceError{Service: service, Suggestion: f.closest(service)}
}

func (f Factories) closest(service string) string {
	if service == "" {
		return ""
	}
	best, bestDist := "", maxHintDistance+1
	for _, factory := range []*backend.Factory{f.API, f.Model} {
		if factory == nil {
			continue
		}
		for _, name := range factory.Registry().Names() {
			d := levenshtein.ComputeDistance(strings.ToLower(service), strings.ToLower(name))
			if d < bestDist {
				best, bestDist = name, d
			}
		}
	}
	return best
}
