package config

// AlwaysExcludedDirs are directory names skipped during discovery regardless
// of include/exclude configuration (spec.md section 6).
var AlwaysExcludedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"target":       true,
	"vendor":       true,
	".next":        true,
	"__pycache__":  true,
}

// DefaultExcludes are glob patterns excluded from analysis by default, applied
// after the always-excluded directory set above.
var DefaultExcludes = []string{
	"**/*.min.js",
	"**/*.min.css",
	"**/*.lock",
	"**/go.sum",
	"**/package-lock.json",
	"**/yarn.lock",
}

// defaultModels maps each provider to its default model identifier.
var defaultModels = map[ProviderType]string{
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOpenAI:     "gpt-4o",
	ProviderCompatible: "gpt-4o",
	ProviderOllama:     "llama3",
}

// DefaultModel returns the default model identifier for a provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderAnthropic]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	provider := ProviderAnthropic
	return &Config{
		Provider:   provider,
		Model:      DefaultModel(provider),
		APIKeyEnv:  APIKeyEnvVar(provider),
		AuthMethod: AuthAPIKey,
		TimeoutMS:  120_000,

		Output:   "./handover",
		Audience: AudienceHuman,
		Include:  []string{"**"},
		Exclude:  DefaultExcludes,

		Analysis: AnalysisConfig{
			Concurrency: 4,
			StaticOnly:  false,
		},

		ContextWindow: ContextWindowConfig{
			MaxTokens: 0, // 0 = use the provider's native ceiling
		},

		CostWarningThreshold: 5.0,
	}
}
