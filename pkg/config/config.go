// Package config handles loading and saving mm configuration.
//
// Configuration follows the XDG Base Directory specification:
//
//   - Config: ~/.config/mm/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GenerateConfig selects and configures the generative service backend.
type GenerateConfig struct {
	Provider  string `yaml:"provider,omitempty"`    // "openai" or "static" (offline demo)
	Model     string `yaml:"model,omitempty"`       // chat model name
	BaseURL   string `yaml:"base_url,omitempty"`    // OpenAI-compatible endpoint override
	APIKeyEnv string `yaml:"api_key_env,omitempty"` // env var holding the API key
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultTopic string `yaml:"default_topic,omitempty"` // used when the search box is empty
	PanelWidth   int    `yaml:"panel_width,omitempty"`   // side panel width in cells
	Dark         *bool  `yaml:"dark,omitempty"`          // force dark/light theme
}

// Config is the top-level configuration for mm.
type Config struct {
	Generate GenerateConfig `yaml:"generate,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Generate: GenerateConfig{
			Provider:  "openai",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		UI: UIConfig{
			DefaultTopic: "General Anatomy",
			PanelWidth:   44,
		},
	}
}

// APIKey resolves the configured API key from the environment. Empty means
// no key: the app falls back to the offline static provider.
func (c Config) APIKey() string {
	env := c.Generate.APIKeyEnv
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	return os.Getenv(env)
}

// ConfigDir returns the XDG config directory for mm.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mm")
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file at path, returning defaults when the file does
// not exist. An unreadable or malformed file is an error: silently ignoring
// it would hide typos in provider settings.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}
