package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/serioha/ai-chatbot/config"
	"github.com/serioha/ai-chatbot/models"
)

// ModelInfo describes one selectable model for the client-facing catalog.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// CompletionService is the boundary the route layer sees: chat completions
// that either succeed or fail with CompletionUnavailableError, title
// generation that never fails, and a credential-driven model catalog.
type CompletionService interface {
	GenerateChatCompletion(ctx context.Context, history []AIMessage, selector string) (string, error)
	GenerateConversationTitle(ctx context.Context, firstMessage string, selector string) string
	AvailableModels() []ModelInfo
}

// FallbackPolicy is the cascade configuration: which providers to try after a
// failed primary attempt, in which order, with which fixed model each.
type FallbackPolicy struct {
	Order           []string
	Models          map[string]string
	DefaultProvider string
	DefaultModel    string
}

// Dispatcher routes completion requests to one of the configured providers
// and cascades through the fallback order on failure. It is stateless per
// call; concurrent requests share nothing mutable.
type Dispatcher struct {
	providers map[string]Provider
	policy    FallbackPolicy
}

// NewDispatcher creates a dispatcher over an explicit provider set. Providers
// missing from the map are skipped by the cascade.
func NewDispatcher(providers map[string]Provider, policy FallbackPolicy) *Dispatcher {
	if policy.DefaultProvider == "" {
		policy.DefaultProvider = "openai"
	}
	if len(policy.Order) == 0 {
		policy.Order = []string{"mistral", "openai", "google"}
	}
	return &Dispatcher{providers: providers, policy: policy}
}

// NewDispatcherFromConfig builds the provider set from configured
// credentials. A provider without an API key is simply absent.
func NewDispatcherFromConfig(cfg config.LLMConfig) *Dispatcher {
	providers := make(map[string]Provider)
	if p, ok := cfg.Providers["openai"]; ok && p.APIKey != "" {
		providers["openai"] = NewOpenAIProvider(p.APIKey, p.BaseURL)
	}
	if p, ok := cfg.Providers["mistral"]; ok && p.APIKey != "" {
		providers["mistral"] = NewMistralProvider(p.APIKey, p.BaseURL)
	}
	if p, ok := cfg.Providers["google"]; ok && p.APIKey != "" {
		providers["google"] = NewGoogleProvider(p.APIKey, p.BaseURL)
	}
	log.Printf("INFO: [Dispatcher] %d provider(s) configured.", len(providers))
	return NewDispatcher(providers, FallbackPolicy{
		Order:           cfg.FallbackOrder,
		Models:          cfg.FallbackModels,
		DefaultProvider: cfg.DefaultProvider,
		DefaultModel:    cfg.DefaultModel,
	})
}

// GenerateChatCompletion resolves the selector, applies the quick-questions
// prompt augmentation and attempts the primary provider, then the fallback
// cascade. Attempts run strictly sequentially and short-circuit on the first
// success. Per-attempt failures are logged and swallowed; only full
// exhaustion surfaces, as a CompletionUnavailableError carrying the primary
// error's message.
func (d *Dispatcher) GenerateChatCompletion(ctx context.Context, history []AIMessage, selector string) (string, error) {
	providerName, model := d.resolveSelector(selector)
	augmented := augmentHistory(history)

	content, primaryErr := d.attempt(ctx, providerName, model, augmented)
	if primaryErr == nil {
		return content, nil
	}
	log.Printf("WARN: [Dispatcher] Primary attempt via '%s' (model '%s') failed: %v", providerName, model, primaryErr)

	for _, candidate := range d.policy.Order {
		if candidate == providerName {
			continue // never retry the provider that just failed
		}
		fallbackModel := d.policy.Models[candidate]
		if fallbackModel == "" {
			continue
		}
		content, err := d.attempt(ctx, candidate, fallbackModel, augmented)
		if err != nil {
			if !errors.Is(err, errProviderNotConfigured) {
				log.Printf("WARN: [Dispatcher] Fallback attempt via '%s' (model '%s') failed: %v", candidate, fallbackModel, err)
			}
			continue
		}
		log.Printf("INFO: [Dispatcher] Fallback via '%s' (model '%s') succeeded.", candidate, fallbackModel)
		return content, nil
	}

	log.Printf("ERROR: [Dispatcher] All completion attempts exhausted. Original error: %v", primaryErr)
	return "", &CompletionUnavailableError{Reason: primaryErr.Error()}
}

var errProviderNotConfigured = errors.New("provider not configured")

// attempt runs one provider call, wrapping any failure as a ProviderError.
func (d *Dispatcher) attempt(ctx context.Context, providerName, model string, messages []AIMessage) (string, error) {
	provider, ok := d.providers[providerName]
	if !ok {
		return "", &ProviderError{Provider: providerName, Model: model, Err: errProviderNotConfigured}
	}
	content, err := provider.Complete(ctx, messages, model)
	if err != nil {
		return "", &ProviderError{Provider: providerName, Model: model, Err: err}
	}
	return content, nil
}

// GenerateConversationTitle produces a short title from the first user
// message. It does not participate in the full cascade: one best-effort
// fallback to google, then the sentinel title. It never returns an error --
// a degraded title must not block message delivery.
func (d *Dispatcher) GenerateConversationTitle(ctx context.Context, firstMessage string, selector string) string {
	providerName, model := d.resolveSelector(selector)
	messages := []AIMessage{
		{Role: models.RoleSystem, Content: titlePrompt},
		{Role: models.RoleUser, Content: firstMessage},
	}

	if provider, ok := d.providers[providerName]; ok {
		if title, err := provider.Complete(ctx, messages, model); err == nil {
			return sanitizeTitle(title)
		} else {
			log.Printf("WARN: [Dispatcher] Title generation via '%s' failed: %v", providerName, err)
		}
	}

	if providerName != "google" {
		if provider, ok := d.providers["google"]; ok {
			fallbackModel := d.policy.Models["google"]
			if title, err := provider.Complete(ctx, messages, fallbackModel); err == nil {
				return sanitizeTitle(title)
			} else {
				log.Printf("WARN: [Dispatcher] Title generation fallback via 'google' failed: %v", err)
			}
		}
	}

	return models.DefaultConversationTitle
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	if title == "" {
		return models.DefaultConversationTitle
	}
	if len(title) > 80 {
		title = title[:80]
	}
	return title
}

// catalogOrder fixes the display order of the model catalog.
var catalogOrder = []string{"openai", "mistral", "google"}

var providerCatalog = map[string][]ModelInfo{
	"openai": {
		{ID: "openai:gpt-4o", Name: "GPT-4o", Provider: "openai"},
		{ID: "openai:gpt-4o-mini", Name: "GPT-4o mini", Provider: "openai"},
	},
	"mistral": {
		{ID: "mistral:mistral-large-latest", Name: "Mistral Large", Provider: "mistral"},
		{ID: "mistral:mistral-small-latest", Name: "Mistral Small", Provider: "mistral"},
	},
	"google": {
		{ID: "google:gemini-1.5-pro", Name: "Gemini 1.5 Pro", Provider: "google"},
		{ID: "google:gemini-1.5-flash", Name: "Gemini 1.5 Flash", Provider: "google"},
	},
}

// AvailableModels is a pure function of which provider credentials are
// configured; no network call is made. When nothing is configured it returns
// a single placeholder entry so the client can show the configuration gap
// instead of an empty picker.
func (d *Dispatcher) AvailableModels() []ModelInfo {
	var out []ModelInfo
	for _, name := range catalogOrder {
		if _, ok := d.providers[name]; !ok {
			continue
		}
		out = append(out, providerCatalog[name]...)
	}
	if len(out) == 0 {
		return []ModelInfo{{
			ID:       "no-models-configured",
			Name:     "No models configured (set a provider API key)",
			Provider: "none",
		}}
	}
	return out
}

// resolveSelector applies defaults for empty selectors and empty model names.
func (d *Dispatcher) resolveSelector(selector string) (string, string) {
	if strings.TrimSpace(selector) == "" {
		return d.policy.DefaultProvider, d.policy.DefaultModel
	}
	providerName, model := ParseModelSelector(selector)
	if model == "" {
		model = d.policy.DefaultModel
	}
	return providerName, model
}
