package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadSettings_Defaults(t *testing.T) {
	isolateHome(t)

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	s := LoadSettings(v)

	if s.DefaultAPIService != "thesaurus" {
		t.Errorf("DefaultAPIService = %q, want thesaurus", s.DefaultAPIService)
	}
	if s.DefaultModelService != "huggingface" {
		t.Errorf("DefaultModelService = %q, want huggingface", s.DefaultModelService)
	}
	if s.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultTimeout)
	}
	if s.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", s.Server.Addr, DefaultServerAddr)
	}
}

func TestLoadSettings_NilViper(t *testing.T) {
	if diff := cmp.Diff(DefaultSettings(), LoadSettings(nil)); diff != "" {
		t.Errorf("LoadSettings(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("SYNREC_THESAURUS_API_KEY", "mw-key")
	t.Setenv("SYNREC_OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("SYNREC_OLLAMA_BASE_URL", "http://gpu-box:11434")
	t.Setenv("SYNREC_TIMEOUT", "15s")
	t.Setenv("SYNREC_DEFAULT_MODEL_SERVICE", "openai")
	t.Setenv("SYNREC_SERVER_ADDR", ":9000")

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	s := LoadSettings(v)

	if s.Thesaurus.APIKey != "mw-key" {
		t.Errorf("Thesaurus.APIKey = %q, want mw-key", s.Thesaurus.APIKey)
	}
	if s.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("OpenAI.Model = %q, want gpt-4o-mini", s.OpenAI.Model)
	}
	if s.Ollama.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Ollama.BaseURL = %q", s.Ollama.BaseURL)
	}
	if s.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", s.Timeout)
	}
	if s.DefaultModelService != "openai" {
		t.Errorf("DefaultModelService = %q, want openai", s.DefaultModelService)
	}
	if s.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", s.Server.Addr)
	}
}

func TestLoadSettings_LegacyEnvNames(t *testing.T) {
	isolateHome(t)
	t.Setenv("THESAURUS_API_KEY", "legacy-mw")
	t.Setenv("OPENAI_AUTH_KEY", "legacy-openai")
	t.Setenv("HF_TOKEN", "hf-legacy")

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	s := LoadSettings(v)

	if s.Thesaurus.APIKey != "legacy-mw" {
		t.Errorf("Thesaurus.APIKey = %q, want legacy-mw", s.Thesaurus.APIKey)
	}
	if s.OpenAI.APIKey != "legacy-openai" {
		t.Errorf("OpenAI.APIKey = %q, want legacy-openai", s.OpenAI.APIKey)
	}
	if s.HuggingFace.Token != "hf-legacy" {
		t.Errorf("HuggingFace.Token = %q, want hf-legacy", s.HuggingFace.Token)
	}
}

func TestLoadSettings_PrefixedEnvWinsOverLegacy(t *testing.T) {
	isolateHome(t)
	t.Setenv("OPENAI_AUTH_KEY", "legacy")
	t.Setenv("SYNREC_OPENAI_API_KEY", "prefixed")

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	if got := LoadSettings(v).OpenAI.APIKey; got != "prefixed" {
		t.Errorf("OpenAI.APIKey = %q, want prefixed", got)
	}
}

func TestNewViper_ReadsHomeConfig(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".synrec")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "thesaurus:\n  api_key: from-file\nmax_parallel_workers: 500\nkeep_log: true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	s := LoadSettings(v)
	if s.Thesaurus.APIKey != "from-file" {
		t.Errorf("Thesaurus.APIKey = %q, want from-file", s.Thesaurus.APIKey)
	}
	if s.MaxParallelWorkers != maxParallelWorkersLimit {
		t.Errorf("MaxParallelWorkers = %d, want %d", s.MaxParallelWorkers, maxParallelWorkersLimit)
	}
	if !s.KeepLog {
		t.Errorf("KeepLog = false, want true")
	}
}

func TestNewViper_ExplicitFileMissing(t *testing.T) {
	isolateHome(t)
	if _, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("NewViper() expected error for missing explicit config file")
	}
}

func TestSettingsHTTPClientTimeout(t *testing.T) {
	s := Settings{}
	if got := s.HTTPClient().Timeout; got != DefaultTimeout {
		t.Errorf("zero timeout client = %v, want %v", got, DefaultTimeout)
	}
	s.Timeout = 3 * time.Second
	if got := s.HTTPClient().Timeout; got != 3*time.Second {
		t.Errorf("client timeout = %v, want 3s", got)
	}
}

func TestConfigServices(t *testing.T) {
	cfg := Config{Service: "huggingface", Fallback: []string{" openai ", "", "huggingface", "thesaurus"}}
	want := []string{"huggingface", "openai", "thesaurus"}
	if diff := cmp.Diff(want, cfg.Services()); diff != "" {
		t.Errorf("Services() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandHome(t *testing.T) {
	home := isolateHome(t)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.synrec/abbreviation.txt", filepath.Join(home, ".synrec", "abbreviation.txt")},
		{"/tmp/abbr.txt", "/tmp/abbr.txt"},
		{" relative.txt ", "relative.txt"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
