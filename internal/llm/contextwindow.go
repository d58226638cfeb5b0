package llm

// contextWindows holds each bundled model's native context window, used by
// the packer's token budgeter (§4.4) unless overridden by
// contextWindow.maxTokens.
var contextWindows = map[string]int{
	"claude-sonnet-4-5-20250929": 200_000,
	"claude-haiku-4-5-20251001":  200_000,
	"claude-opus-4-6":            200_000,
	"gpt-4o":                     128_000,
	"gpt-4o-mini":                128_000,
	"llama3":                     8_192,
}

// defaultContextWindow is used for a model not present in contextWindows,
// e.g. a custom openai-compatible deployment.
const defaultContextWindow = 128_000

// MaxContextTokens returns the model's native context window in tokens.
func MaxContextTokens(model string) int {
	if w, ok := contextWindows[model]; ok {
		return w
	}
	return defaultContextWindow
}
