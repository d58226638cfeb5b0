package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (HANDOVERDOC_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("HANDOVERDOC_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "HANDOVERDOC_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = APIKeyEnvVar(cfg.Provider)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic:  true,
	ProviderOpenAI:     true,
	ProviderCompatible: true,
	ProviderOllama:     true,
}

var validAuthMethods = map[AuthMethod]bool{
	AuthAPIKey:       true,
	AuthSubscription: true,
}

var validAudiences = map[Audience]bool{
	AudienceHuman: true,
	AudienceAI:    true,
}

// Validate checks that the configuration contains valid values. It is the
// config-error boundary from spec.md section 7: failures here abort the run
// before any I/O against the repository happens.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of anthropic, openai, openai-compatible, ollama", c.Provider)
	}
	if c.Provider == ProviderCompatible && c.BaseURL == "" {
		return fmt.Errorf("base_url is required when provider is openai-compatible")
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.AuthMethod == "" {
		c.AuthMethod = AuthAPIKey
	}
	if !validAuthMethods[c.AuthMethod] {
		return fmt.Errorf("invalid auth_method %q: must be one of api-key, subscription", c.AuthMethod)
	}

	if c.Audience == "" {
		c.Audience = AudienceHuman
	}
	if !validAudiences[c.Audience] {
		return fmt.Errorf("invalid audience %q: must be one of human, ai", c.Audience)
	}

	if c.Output == "" {
		return fmt.Errorf("output is required")
	}

	if c.Analysis.Concurrency < 0 {
		return fmt.Errorf("analysis.concurrency must be non-negative")
	}

	if c.CostWarningThreshold < 0 {
		return fmt.Errorf("cost_warning_threshold must be non-negative")
	}

	if c.ContextWindow.MaxTokens < 0 {
		return fmt.Errorf("context_window.max_tokens must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI, ProviderCompatible:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
