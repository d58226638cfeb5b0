package llm

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/handoverdoc/internal/auth"
)

// NewProvider creates a new LLM provider based on the given provider type and
// model. Supported provider types: "anthropic", "openai", "openai-compatible",
// "ollama". Credential lookup order: env var → stored credentials → error.
// baseURL is only consulted for "openai-compatible".
func NewProvider(providerType, model, baseURL string) (Provider, error) {
	switch providerType {
	case "anthropic":
		apiKey := auth.GetAPIKey("anthropic")
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key not found.\nSet ANTHROPIC_API_KEY or store a key in ~/.handoverdoc/credentials.json")
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "openai":
		apiKey := auth.GetAPIKey("openai")
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found.\nSet OPENAI_API_KEY or store a key in ~/.handoverdoc/credentials.json")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "openai-compatible":
		apiKey := auth.GetAPIKey("openai-compatible")
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found for the OpenAI-compatible endpoint.\nSet OPENAI_API_KEY")
		}
		if baseURL == "" {
			return nil, fmt.Errorf("base_url is required for provider openai-compatible")
		}
		return NewCompatibleProvider(apiKey, baseURL, model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
