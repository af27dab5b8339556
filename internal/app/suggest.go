package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"synrec/internal/abbrev"
	"synrec/internal/backend"
	config "synrec/internal/config"
	ilogger "synrec/internal/logger"
	"synrec/internal/suggest"
	"synrec/internal/textctx"
)

var (
	newFactoriesFn = suggest.BundledFactories
	newSuggesterFn = suggest.New
	loadTableFn    = loadTable
)

type suggestOutput struct {
	Word     string   `json:"word"`
	Service  string   `json:"service"`
	Model    string   `json:"model,omitempty"`
	Synonyms []string `json:"synonyms"`
	Context  string   `json:"context,omitempty"`
}

// runSuggest queries cfg's services in order and prints the first success.
// Only construction and invocation failures move on to the next service.
func runSuggest(ctx context.Context, cfg *config.Config, settings config.Settings, stdout io.Writer) int {
	factories := newFactoriesFn(settings)
	services := cfg.Services()
	if len(services) == 0 {
		ilogger.LogError(errNoServices.Error())
		return exitUsage
	}
	for _, svc := range services {
		if _, ok := factories.For(svc); !ok {
			err := factories.Unsupported(svc)
			ilogger.LogError(err.Error())
			return exitCodeFor(err)
		}
	}

	params, window, err := prepareParams(cfg)
	if err != nil {
		ilogger.LogError(err.Error())
		return exitFailure
	}

	var s *suggest.Suggester
	attempt := func(svc, model string) (backend.Result, error) {
		if s == nil {
			built, err := newSuggesterFn(ctx, factories, defaultsFor(factories, settings, svc, model))
			if err != nil {
				return backend.Result{}, err
			}
			s = built
		}
		return s.Suggest(ctx, suggest.Request{Word: cfg.Word, Service: svc, Model: model, Params: params})
	}

	var lastErr error
	for i, svc := range services {
		model := modelFor(cfg, settings, svc)
		res, err := attempt(svc, model)
		if err == nil {
			ilogger.LogInfo(fmt.Sprintf("%s returned %d candidate(s)", svc, len(res.Synonyms)))
			return printResult(stdout, cfg, suggestOutput{
				Word:     cfg.Word,
				Service:  svc,
				Model:    model,
				Synonyms: suggest.Clean(cfg.Word, res.Synonyms, cfg.Top),
				Context:  window,
			})
		}

		lastErr = err
		if !canFallBack(err) {
			break
		}
		if i+1 < len(services) {
			ilogger.LogWarn(fmt.Sprintf("%s failed, falling back to %s: %v", svc, services[i+1], err))
		}
	}

	ilogger.LogError(lastErr.Error())
	return exitCodeFor(lastErr)
}

func canFallBack(err error) bool {
	return backend.IsConstruction(err) || backend.IsInvocation(err)
}

// modelFor applies the default_model setting to the default model service
// when no --model was given.
func modelFor(cfg *config.Config, settings config.Settings, service string) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if service == settings.DefaultModelService {
		return settings.DefaultModel
	}
	return ""
}

// defaultsFor binds service as the default of its own family so the first
// request does not construct it twice.
func defaultsFor(factories suggest.Factories, settings config.Settings, service, model string) suggest.Defaults {
	d := suggest.DefaultsFromSettings(settings)
	f, ok := factories.For(service)
	if !ok {
		return d
	}
	if f.Registry().Family() == backend.FamilyAPI {
		d.APIService = service
		return d
	}
	d.ModelService, d.Model = service, model
	return d
}

// prepareParams turns --param values into backend params and adds the
// context window cut from the (optionally expanded) text.
func prepareParams(cfg *config.Config) (backend.Params, string, error) {
	params := backend.Params{}
	for k, v := range cfg.Params {
		params[k] = v
	}

	text := cfg.Text
	var table *abbrev.Table
	if cfg.Abbrev {
		t, err := loadTableFn(cfg.AbbrevFile)
		if err != nil {
			return nil, "", err
		}
		table = t
		text = table.Replace(text)
		ilogger.LogInfo(fmt.Sprintf("Expanded abbreviations with %d table entries", table.Len()))
	}

	if text == "" {
		return params, "", nil
	}
	if explicit := params.Text(backend.ParamContext); explicit != "" {
		return params, explicit, nil
	}

	window, ok := textctx.WindowAny(text, table.Variants(cfg.Word), cfg.Sentence, cfg.ContextLen)
	if !ok {
		ilogger.LogWarn(fmt.Sprintf("%q does not occur in the text; sending no context", cfg.Word))
		return params, "", nil
	}
	params[backend.ParamContext] = window
	return params, window, nil
}

func loadTable(path string) (*abbrev.Table, error) {
	resolved, err := config.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("resolve abbreviation table path: %w", err)
	}
	t, err := abbrev.Load(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w (run `%s abbrev fetch` to download it)", err, ilogger.AppName)
	}
	return t, nil
}

func printResult(w io.Writer, cfg *config.Config, out suggestOutput) int {
	if cfg.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			ilogger.LogError(fmt.Sprintf("encode result: %v", err))
			return exitFailure
		}
		return exitOK
	}
	if len(out.Synonyms) == 0 {
		fmt.Fprintf(w, "No synonyms found for %q (%s)\n", out.Word, out.Service)
		return exitOK
	}
	for _, s := range out.Synonyms {
		fmt.Fprintln(w, s)
	}
	return exitOK
}

var errNoServices = errors.New("no services given")
