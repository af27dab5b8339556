package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	IDOpenAI             = "openai"
	DefaultOpenAIModel   = "gpt-3.5-turbo"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIBackend asks a chat completion model for a comma-separated list.
type OpenAIBackend struct {
	model   string
	baseURL string
	apiKey  string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAIBackend(_ context.Context, opts Options) (Backend, error) {
	s := opts.Settings.OpenAI
	if s.APIKey == "" {
		return nil, fmt.Errorf("openai: %w (set openai.api_key or OPENAI_API_KEY)", errMissingAPIKey)
	}
	model := s.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	return &OpenAIBackend{model: model, baseURL: base, apiKey: s.APIKey, client: opts.Client}, nil
}

func (b *OpenAIBackend) Model() string { return b.model }

func (b *OpenAIBackend) Suggest(ctx context.Context, word string, params Params) (Result, error) {
	body := chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: suggestPrompt(word, params)},
		},
	}
	if t, ok := params.Float(ParamTemperature); ok {
		body.Temperature = &t
	}
	if n, ok := params.Int(ParamMaxTokens); ok && n > 0 {
		body.MaxTokens = n
	}

	req := request{
		method:  http.MethodPost,
		url:     joinURL(b.baseURL, "chat/completions"),
		body:    body,
		headers: bearer(b.apiKey),
	}
	var resp chatResponse
	if err := doJSON(ctx, b.client, req, &resp); err != nil {
		return Result{}, NewInvocationError(IDOpenAI, opFor(err), err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, NewInvocationError(IDOpenAI, "decode", errors.New("response has no choices"))
	}

	return NewResult(splitCandidates(resp.Choices[0].Message.Content)), nil
}
