package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

const (
	IDThesaurus             = "thesaurus"
	DefaultThesaurusBaseURL = "https://www.dictionaryapi.com/api/v3/references/thesaurus/json"
)

var errMissingAPIKey = errors.New("api key is not configured")

// ThesaurusBackend queries the Merriam-Webster thesaurus. Only the first
// sense of the first entry is used.
type ThesaurusBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type thesaurusEntry struct {
	Meta struct {
		ID   string     `json:"id"`
		Syns [][]string `json:"syns"`
	} `json:"meta"`
}

// NewThesaurusBackend never fails. A missing API key is reported by Suggest,
// so model services stay usable without thesaurus credentials.
func NewThesaurusBackend(_ context.Context, opts Options) (Backend, error) {
	s := opts.Settings.Thesaurus
	base := s.BaseURL
	if base == "" {
		base = DefaultThesaurusBaseURL
	}
	return &ThesaurusBackend{baseURL: base, apiKey: s.APIKey, client: opts.Client}, nil
}

// Suggest returns the first synonym group for word. A word the thesaurus
// does not know yields an empty result, not an error.
func (b *ThesaurusBackend) Suggest(ctx context.Context, word string, params Params) (Result, error) {
	if b.apiKey == "" {
		err := fmt.Errorf("%w (set thesaurus.api_key or THESAURUS_API_KEY)", errMissingAPIKey)
		return Result{}, NewInvocationError(IDThesaurus, "request", err)
	}
	endpoint := joinURL(b.baseURL, url.PathEscape(word)) + "?key=" + url.QueryEscape(b.apiKey)

	var raw []json.RawMessage
	if err := doJSON(ctx, b.client, request{method: http.MethodGet, url: endpoint}, &raw); err != nil {
		return Result{}, NewInvocationError(IDThesaurus, opFor(err), err)
	}

	synonyms := firstSynonyms(raw)
	if limit, ok := params.Int(ParamLimit); ok && limit > 0 && len(synonyms) > limit {
		synonyms = synonyms[:limit]
	}
	return NewResult(synonyms), nil
}

// firstSynonyms reads meta.syns[0] of the first entry. Unknown words come
// back as a list of spelling suggestions (plain strings), which decode to
// no synonyms.
func firstSynonyms(raw []json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var entry thesaurusEntry
	if err := json.Unmarshal(raw[0], &entry); err != nil {
		logDebugFn(fmt.Sprintf("thesaurus: first entry is not an object: %v", err))
		return nil
	}
	if len(entry.Meta.Syns) == 0 {
		return nil
	}
	return entry.Meta.Syns[0]
}
