package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPIService   = "thesaurus"
	DefaultModelService = "huggingface"
	DefaultTimeout      = 60 * time.Second
	DefaultServerAddr   = "127.0.0.1:8089"
	DefaultAbbrevFile   = "~/.synrec/abbreviation.txt"

	maxParallelWorkersLimit = 100
)

// ThesaurusSettings configures the Merriam-Webster thesaurus backend.
type ThesaurusSettings struct {
	APIKey  string
	BaseURL string
}

// HuggingFaceSettings configures the Hugging Face inference backend.
// HubURL is probed at construction to confirm the model exists.
type HuggingFaceSettings struct {
	Token   string
	BaseURL string
	HubURL  string
}

type OllamaSettings struct {
	BaseURL string
}

type OpenAISettings struct {
	APIKey  string
	BaseURL string
	Model   string
}

type ServerSettings struct {
	Addr string
}

// Settings carries every value a backend constructor or outer surface may
// need. Constructors read credentials from here, never from the process
// environment.
type Settings struct {
	Thesaurus   ThesaurusSettings
	HuggingFace HuggingFaceSettings
	Ollama      OllamaSettings
	OpenAI      OpenAISettings
	Server      ServerSettings

	Timeout             time.Duration
	DefaultAPIService   string
	DefaultModelService string
	DefaultModel        string
	AbbrevFile          string
	KeepLog             bool
	// MaxParallelWorkers bounds concurrent queries in compare mode; 0 means
	// unlimited.
	MaxParallelWorkers int
}

// DefaultSettings returns the settings used when nothing is configured.
// Backend base URLs are left empty so each backend applies its own default.
func DefaultSettings() Settings {
	return Settings{
		Server:              ServerSettings{Addr: DefaultServerAddr},
		Timeout:             DefaultTimeout,
		DefaultAPIService:   DefaultAPIService,
		DefaultModelService: DefaultModelService,
		AbbrevFile:          DefaultAbbrevFile,
	}
}

// LoadSettings reads Settings out of v, falling back to DefaultSettings for
// blank values.
func LoadSettings(v *viper.Viper) Settings {
	s := DefaultSettings()
	if v == nil {
		return s
	}

	s.Thesaurus = ThesaurusSettings{
		APIKey:  str(v, "thesaurus.api_key"),
		BaseURL: str(v, "thesaurus.base_url"),
	}
	s.HuggingFace = HuggingFaceSettings{
		Token:   str(v, "huggingface.token"),
		BaseURL: str(v, "huggingface.base_url"),
		HubURL:  str(v, "huggingface.hub_url"),
	}
	s.Ollama = OllamaSettings{BaseURL: str(v, "ollama.base_url")}
	s.OpenAI = OpenAISettings{
		APIKey:  str(v, "openai.api_key"),
		BaseURL: str(v, "openai.base_url"),
		Model:   str(v, "openai.model"),
	}

	if addr := str(v, "server.addr"); addr != "" {
		s.Server.Addr = addr
	}
	if d := v.GetDuration("timeout"); d > 0 {
		s.Timeout = d
	}
	if svc := str(v, "default_api_service"); svc != "" {
		s.DefaultAPIService = svc
	}
	if svc := str(v, "default_model_service"); svc != "" {
		s.DefaultModelService = svc
	}
	s.DefaultModel = str(v, "default_model")
	if f := str(v, "abbrev_file"); f != "" {
		s.AbbrevFile = f
	}
	s.KeepLog = v.GetBool("keep_log")
	s.MaxParallelWorkers = clampWorkers(v.GetInt("max_parallel_workers"))

	return s
}

// HTTPClient returns the client shared by every backend built from s.
func (s Settings) HTTPClient() *http.Client {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func str(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func clampWorkers(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxParallelWorkersLimit {
		return maxParallelWorkersLimit
	}
	return n
}
