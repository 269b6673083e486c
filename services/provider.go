package services

import (
	"context"
	"strings"
)

// AIMessage is the normalized message shape sent to providers. Role is always
// one of the closed {user, assistant, system} set.
type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is one LLM vendor integration. The set is closed: openai, mistral
// and google. Each takes a normalized message list and a model name and
// returns completion text or fails.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []AIMessage, model string) (string, error)
}

// ParseModelSelector splits a "provider:model" selector. A bare model name
// defaults to the openai provider. Selectors are parsed on every dispatch,
// never persisted in structured form.
func ParseModelSelector(selector string) (provider string, model string) {
	selector = strings.TrimSpace(selector)
	if idx := strings.Index(selector, ":"); idx >= 0 {
		return strings.ToLower(strings.TrimSpace(selector[:idx])), strings.TrimSpace(selector[idx+1:])
	}
	return "openai", selector
}
