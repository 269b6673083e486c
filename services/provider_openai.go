package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/serioha/ai-chatbot/models"

	openai "github.com/sashabaranov/go-openai"
)

// openAICompatProvider speaks the OpenAI chat-completions protocol. Both the
// openai and mistral providers use it; Mistral's API is wire-compatible and
// only differs by base URL.
type openAICompatProvider struct {
	name   string
	client *openai.Client
}

// NewOpenAIProvider creates the openai provider. baseURL may be empty to use
// the vendor default.
func NewOpenAIProvider(apiKey, baseURL string) Provider {
	return newOpenAICompatProvider("openai", apiKey, baseURL)
}

// NewMistralProvider creates the mistral provider against Mistral's
// OpenAI-compatible endpoint.
func NewMistralProvider(apiKey, baseURL string) Provider {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	return newOpenAICompatProvider("mistral", apiKey, baseURL)
}

func newOpenAICompatProvider(name, apiKey, baseURL string) Provider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &openAICompatProvider{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *openAICompatProvider) Name() string { return p.name }

// Complete sends the normalized history as-is; system messages are supported
// natively by this protocol.
func (p *openAICompatProvider) Complete(ctx context.Context, messages []AIMessage, model string) (string, error) {
	apiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		apiMessages = append(apiMessages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: apiMessages,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(p.name + " returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(role string) string {
	switch models.NormalizeRole(role) {
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
