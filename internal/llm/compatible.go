package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// CompatibleProvider implements Provider against any OpenAI-compatible Chat
// Completions endpoint (Azure OpenAI, Groq, Together, DeepSeek, or a fully
// custom base URL), reusing the teacher's go-openai client with its base
// URL overridden.
type CompatibleProvider struct {
	client *openai.Client
	model  string
}

// NewCompatibleProvider creates a provider against the given base URL.
func NewCompatibleProvider(apiKey, baseURL, model string) *CompatibleProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &CompatibleProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *CompatibleProvider) Name() string {
	return "openai-compatible"
}

func (p *CompatibleProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var messages []openai.ChatCompletionMessage
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	var content, finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: finishReason,
	}, nil
}
