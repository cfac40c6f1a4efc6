package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.rag-cli/config.yaml.
type Config struct {
	// Model is the chat/RAG model used for ask and chat calls.
	Model string `yaml:"model"`
	// BaseURL is the API root, without a trailing slash.
	BaseURL string `yaml:"base_url"`
	// MaxResults caps how many retrieved chunks the file_search tool returns.
	MaxResults int `yaml:"max_results"`
	// EmbedPricePerMillion is the approximate embedding price in USD per 1M
	// tokens, used only for the pre-ingestion cost estimate.
	EmbedPricePerMillion float64 `yaml:"embed_price_per_million"`
}

// RagDir returns the absolute path to ~/.rag-cli/.
func RagDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".rag-cli"), nil
}

// ConfigPath returns the absolute path to ~/.rag-cli/config.yaml.
func ConfigPath() (string, error) {
	dir, err := RagDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// CachePath returns the absolute path to the session cache file.
// The file lives directly in the home directory for compatibility with
// earlier releases that kept it there.
func CachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".rag_vector_stores.json"), nil
}

// ExpandPath expands a leading ~ and any $VAR references in p.
func ExpandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}
	return os.ExpandEnv(p), nil
}

// DefaultConfig returns the configuration used when no config.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		Model:                "gpt-4.1-mini",
		BaseURL:              "https://api.openai.com/v1",
		MaxResults:           8,
		EmbedPricePerMillion: 0.02, // text-embedding-3-small, approximate
	}
}

// Load reads ~/.rag-cli/config.yaml. A missing file yields defaults; a
// partial file has defaults applied per field.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.rag-cli/config.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.EmbedPricePerMillion <= 0 {
		cfg.EmbedPricePerMillion = def.EmbedPricePerMillion
	}
}
