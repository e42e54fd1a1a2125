// Package config loads and saves publisher settings.
//
// Settings live in a YAML file at the vault root and are passed explicitly
// into each pipeline; nothing reads them ambiently.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file at the vault root.
const FileName = ".mbpublish.yml"

// Date fallback policies for notes whose date the parser does not
// recognize.
const (
	// DateFallbackNow substitutes the current time and says so through the
	// status sink.
	DateFallbackNow = "now"
	// DateFallbackError aborts the publish instead.
	DateFallbackError = "error"
)

// Environment overrides so tokens can stay out of the settings file.
const (
	envToken     = "MBPUBLISH_TOKEN"
	envOpenAIKey = "MBPUBLISH_OPENAI_KEY"
)

// Settings is the full configuration for one vault.
type Settings struct {
	APIToken          string `yaml:"api_token"`
	Username          string `yaml:"username"`
	Blog              string `yaml:"blog"`
	DeleteAfterUpload bool   `yaml:"delete_after_upload"`
	UseAIAltText      bool   `yaml:"use_ai_alt_text"`
	OpenAIAPIKey      string `yaml:"openai_api_key,omitempty"`
	DateFallback      string `yaml:"date_fallback"`
}

// Default returns the settings used when no file exists yet.
func Default() Settings {
	return Settings{
		DateFallback: DateFallbackNow,
	}
}

// Load reads settings from the vault root, returning defaults when the file
// does not exist. Environment variables override file values for the two
// secrets.
func Load(vaultPath string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(filepath.Join(vaultPath, FileName))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if s.DateFallback == "" {
		s.DateFallback = DateFallbackNow
	}
	if token := os.Getenv(envToken); token != "" {
		s.APIToken = token
	}
	if key := os.Getenv(envOpenAIKey); key != "" {
		s.OpenAIAPIKey = key
	}

	return s, nil
}

// Save writes settings back to the vault root.
func Save(vaultPath string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(vaultPath, FileName), data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks the fields every remote command depends on.
func (s Settings) Validate() error {
	if s.APIToken == "" {
		return fmt.Errorf("api_token is not set; add it to %s or export %s", FileName, envToken)
	}
	if s.DateFallback != DateFallbackNow && s.DateFallback != DateFallbackError {
		return fmt.Errorf("date_fallback must be %q or %q, got %q",
			DateFallbackNow, DateFallbackError, s.DateFallback)
	}
	if s.UseAIAltText && s.OpenAIAPIKey == "" {
		return fmt.Errorf("use_ai_alt_text is on but openai_api_key is not set; set it or export %s", envOpenAIKey)
	}
	return nil
}
