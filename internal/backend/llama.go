package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"synrec/internal/parser"
)

const (
	IDLlama2             = "llama2-7b"
	DefaultLlamaModel    = "llama2:7b"
	DefaultOllamaBaseURL = "http://localhost:11434"
)

// LlamaBackend generates synonyms with a model served by a local Ollama
// runtime. Responses are streamed as JSON lines and concatenated.
type LlamaBackend struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaTags struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// NewLlamaBackend requires the runtime to be reachable and the model pulled.
func NewLlamaBackend(ctx context.Context, opts Options) (Backend, error) {
	model := opts.Model
	if model == "" {
		model = DefaultLlamaModel
	}
	base := opts.Settings.Ollama.BaseURL
	if base == "" {
		base = DefaultOllamaBaseURL
	}

	var tags ollamaTags
	if err := doJSON(ctx, opts.Client, request{method: http.MethodGet, url: joinURL(base, "api/tags")}, &tags); err != nil {
		return nil, fmt.Errorf("ollama at %s: %w", base, err)
	}
	found := false
	for _, m := range tags.Models {
		if sameOllamaModel(m.Name, model) || sameOllamaModel(m.Model, model) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("model %q is not available in ollama at %s", model, base)
	}

	return &LlamaBackend{model: model, baseURL: base, client: opts.Client}, nil
}

// sameOllamaModel treats a name without a tag as ":latest".
func sameOllamaModel(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	norm := func(s string) string {
		if !strings.Contains(s, ":") {
			return s + ":latest"
		}
		return s
	}
	return norm(a) == norm(b)
}

func (b *LlamaBackend) Model() string { return b.model }

func (b *LlamaBackend) Suggest(ctx context.Context, word string, params Params) (Result, error) {
	body := ollamaGenerateRequest{
		Model:  b.model,
		Prompt: generatePrompt(word, params),
		System: systemPrompt,
		Stream: true,
	}
	options := map[string]any{}
	if t, ok := params.Float(ParamTemperature); ok {
		options["temperature"] = t
	}
	if n, ok := params.Int(ParamMaxTokens); ok && n > 0 {
		options["num_predict"] = n
	}
	if len(options) > 0 {
		body.Options = options
	}

	resp, err := send(ctx, b.client, request{method: http.MethodPost, url: joinURL(b.baseURL, "api/generate"), body: body})
	if err != nil {
		return Result{}, NewInvocationError(IDLlama2, "request", err)
	}
	defer resp.Body.Close()

	var text strings.Builder
	err = parser.Decode(resp.Body, func(chunk ollamaGenerateChunk) error {
		if chunk.Error != "" {
			return errors.New(chunk.Error)
		}
		text.WriteString(chunk.Response)
		if chunk.Done {
			return parser.ErrStop
		}
		return nil
	})
	if err != nil {
		return Result{}, NewInvocationError(IDLlama2, "stream", err)
	}

	return NewResult(splitCandidates(text.String())), nil
}
