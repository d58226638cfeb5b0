package config

// ProviderType identifies an LLM backend, per the "provider" config option.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	// ProviderCompatible covers any OpenAI-compatible HTTP endpoint:
	// Azure OpenAI, Groq, Together, DeepSeek, or a fully custom base URL.
	ProviderCompatible ProviderType = "openai-compatible"
	ProviderOllama     ProviderType = "ollama"
)

// AuthMethod selects how credentials are obtained for the selected provider.
type AuthMethod string

const (
	AuthAPIKey       AuthMethod = "api-key"
	AuthSubscription AuthMethod = "subscription"
)

// Audience controls the tone and density of rendered documentation.
type Audience string

const (
	AudienceHuman Audience = "human"
	AudienceAI    Audience = "ai"
)

// Config is the top-level configuration, corresponding to .handoverdoc.yml.
// Every field enumerated in spec.md section 6 has a home here.
type Config struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	APIKeyEnv  string       `yaml:"api_key_env" koanf:"api_key_env"`
	AuthMethod AuthMethod   `yaml:"auth_method" koanf:"auth_method"`
	BaseURL    string       `yaml:"base_url" koanf:"base_url"`
	TimeoutMS  int          `yaml:"timeout" koanf:"timeout"`

	Output   string   `yaml:"output" koanf:"output"`
	Audience Audience `yaml:"audience" koanf:"audience"`
	Include  []string `yaml:"include" koanf:"include"`
	Exclude  []string `yaml:"exclude" koanf:"exclude"`
	Context  string   `yaml:"context" koanf:"context"`

	Analysis      AnalysisConfig      `yaml:"analysis" koanf:"analysis"`
	Project       ProjectConfig       `yaml:"project" koanf:"project"`
	ContextWindow ContextWindowConfig `yaml:"context_window" koanf:"context_window"`

	CostWarningThreshold float64 `yaml:"cost_warning_threshold" koanf:"cost_warning_threshold"`
}

// AnalysisConfig controls the static-analyzer coordinator.
type AnalysisConfig struct {
	Concurrency int  `yaml:"concurrency" koanf:"concurrency"`
	StaticOnly  bool `yaml:"static_only" koanf:"static_only"`
}

// ProjectConfig carries maintainer-asserted metadata injected into round
// prompts as supplementary context. It is never treated as a factual claim
// by the Claim Validator.
type ProjectConfig struct {
	Name         string `yaml:"name" koanf:"name"`
	Description  string `yaml:"description" koanf:"description"`
	Domain       string `yaml:"domain" koanf:"domain"`
	TeamSize     string `yaml:"team_size" koanf:"team_size"`
	DeployTarget string `yaml:"deploy_target" koanf:"deploy_target"`
}

// ContextWindowConfig overrides the provider's default packer budget.
type ContextWindowConfig struct {
	MaxTokens int      `yaml:"max_tokens" koanf:"max_tokens"`
	Pin       []string `yaml:"pin" koanf:"pin"`
	Boost     []string `yaml:"boost" koanf:"boost"`
}
