package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider %q, got %q", ProviderAnthropic, cfg.Provider)
	}
	if cfg.AuthMethod != AuthAPIKey {
		t.Errorf("expected default auth_method %q, got %q", AuthAPIKey, cfg.AuthMethod)
	}
	if cfg.Output != "./handover" {
		t.Errorf("expected default output %q, got %q", "./handover", cfg.Output)
	}
	if cfg.Analysis.Concurrency != 4 {
		t.Errorf("expected default analysis.concurrency 4, got %d", cfg.Analysis.Concurrency)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.handoverdoc.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Audience = AudienceAI
	original.Include = []string{"**/*.go", "**/*.py"}
	original.Output = "output"
	original.CostWarningThreshold = 25.5

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Audience != original.Audience {
		t.Errorf("audience: got %q, want %q", loaded.Audience, original.Audience)
	}
	if loaded.Output != original.Output {
		t.Errorf("output: got %q, want %q", loaded.Output, original.Output)
	}
	if loaded.CostWarningThreshold != original.CostWarningThreshold {
		t.Errorf("cost_warning_threshold: got %f, want %f", loaded.CostWarningThreshold, original.CostWarningThreshold)
	}
	if len(loaded.Include) != len(original.Include) {
		t.Errorf("include length: got %d, want %d", len(loaded.Include), len(original.Include))
	}
	for i, v := range loaded.Include {
		if v != original.Include[i] {
			t.Errorf("include[%d]: got %q, want %q", i, v, original.Include[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Override provider via env var.
	os.Setenv("HANDOVERDOC_PROVIDER", "openai")
	defer os.Unsetenv("HANDOVERDOC_PROVIDER")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateCompatibleRequiresBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderCompatible
	cfg.Model = "gpt-4o"
	cfg.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing base_url on openai-compatible provider")
	}
	cfg.BaseURL = "https://my-endpoint.example.com/v1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config with base_url set, got: %v", err)
	}
}

func TestValidateInvalidAudience(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audience = "robot"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid audience")
	}
}

func TestValidateInvalidAuthMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthMethod = "ssh-key"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid auth_method")
	}
}

func TestValidateEmptyOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty output")
	}
}

func TestValidateNegativeConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Concurrency = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative analysis.concurrency")
	}
}

func TestValidateNegativeCost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CostWarningThreshold = -5.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative cost_warning_threshold")
	}
}

func TestValidateNegativeMaxTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContextWindow.MaxTokens = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative context_window.max_tokens")
	}
}

func TestDefaultModel(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "claude-sonnet-4-5-20250929"},
		{ProviderOpenAI, "gpt-4o"},
		{ProviderCompatible, "gpt-4o"},
		{ProviderOllama, "llama3"},
		{"unknown", "claude-sonnet-4-5-20250929"},
	}
	for _, tt := range tests {
		got := DefaultModel(tt.provider)
		if got != tt.want {
			t.Errorf("DefaultModel(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderCompatible, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.go", []string{"**/*.go"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
