package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// legacyEnv lists the environment names older deployments used for
// credentials. They are consulted after the SYNREC_* name.
var legacyEnv = map[string][]string{
	"thesaurus.api_key": {"THESAURUS_API_KEY"},
	"openai.api_key":    {"OPENAI_AUTH_KEY", "OPENAI_API_KEY"},
	"huggingface.token": {"HF_TOKEN", "HUGGINGFACEHUB_API_TOKEN"},
}

// NewViper returns a viper instance configured for SYNREC_* environment
// variables and an optional config file.
//
// Search order when configFile is empty:
//   - $HOME/.synrec/config.(yaml|yml|json|toml|...)
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SYNREC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v, nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(home, ".synrec"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}

	return v, nil
}
