package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/arnstead/skald/internal/apperr"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Source SourceConfig      `yaml:"source"`
	Cache  CacheConfig       `yaml:"cache"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig describes where the knowledge-base content lives.
//
// Two modes are supported:
//   - remote: Owner and Repo name a hosted git repository whose files are
//     fetched over HTTP (the default).
//   - local: LocalPath points at a directory on disk; Owner and Repo are
//     then optional and used only for cache key labeling.
type SourceConfig struct {
	Owner           string `yaml:"owner"`
	Repo            string `yaml:"repo"`
	DocsPath        string `yaml:"docs_path"`
	Branch          string `yaml:"branch"`
	LocalPath       string `yaml:"local_path"`
	APIBaseURL      string `yaml:"api_base_url"`
	RawBaseURL      string `yaml:"raw_base_url"`
	FallbackBaseURL string `yaml:"fallback_base_url"`
	DefaultCategory string `yaml:"default_category"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	if c.LocalPath == "" && (c.Owner == "" || c.Repo == "") {
		return fmt.Errorf("source: %w", apperr.ErrMissingConfiguration)
	}
	return nil
}

// CacheConfig holds the optional SQLite raw-content cache configuration.
// An empty path disables the on-disk cache.
type CacheConfig struct {
	RawPath string `yaml:"raw_path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			DocsPath:        "docs",
			DefaultCategory: "General",
		},
	}
}
