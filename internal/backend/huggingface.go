package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	IDHuggingFace             = "huggingface"
	DefaultHuggingFaceModel   = "facebook/nllb-200-distilled-1.3B"
	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"
	DefaultHuggingFaceHubURL  = "https://huggingface.co"
)

// HuggingFaceBackend runs a hosted text2text model through the inference
// API. Every generated sequence is split into candidates.
type HuggingFaceBackend struct {
	model   string
	baseURL string
	token   string
	client  *http.Client
}

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFaceBackend checks the model exists on the hub before returning.
func NewHuggingFaceBackend(ctx context.Context, opts Options) (Backend, error) {
	s := opts.Settings.HuggingFace
	model := opts.Model
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultHuggingFaceBaseURL
	}
	hub := s.HubURL
	if hub == "" {
		hub = DefaultHuggingFaceHubURL
	}

	probe := request{
		method:  http.MethodGet,
		url:     joinURL(hub, "api/models/"+model),
		headers: bearer(s.Token),
	}
	if err := doJSON(ctx, opts.Client, probe, nil); err != nil {
		return nil, fmt.Errorf("look up model %q: %w", model, err)
	}

	return &HuggingFaceBackend{model: model, baseURL: base, token: s.Token, client: opts.Client}, nil
}

func (b *HuggingFaceBackend) Model() string { return b.model }

func (b *HuggingFaceBackend) Suggest(ctx context.Context, word string, params Params) (Result, error) {
	input := word
	if c := params.Text(ParamContext); c != "" {
		input = fmt.Sprintf("%s (context: %s)", word, c)
	}
	body := hfRequest{
		Inputs:  input,
		Options: map[string]any{"wait_for_model": true},
	}
	parameters := map[string]any{}
	if t, ok := params.Float(ParamTemperature); ok {
		parameters["temperature"] = t
	}
	if n, ok := params.Int(ParamMaxTokens); ok && n > 0 {
		parameters["max_new_tokens"] = n
	}
	if len(parameters) > 0 {
		body.Parameters = parameters
	}

	req := request{
		method:  http.MethodPost,
		url:     joinURL(b.baseURL, b.model),
		body:    body,
		headers: bearer(b.token),
	}
	var generations []hfGeneration
	if err := doJSON(ctx, b.client, req, &generations); err != nil {
		return Result{}, NewInvocationError(IDHuggingFace, opFor(err), err)
	}

	var synonyms []string
	for _, g := range generations {
		text := strings.TrimSpace(g.GeneratedText)
		if text == "" {
			continue
		}
		synonyms = append(synonyms, splitCandidates(text)...)
	}
	return NewResult(synonyms), nil
}
