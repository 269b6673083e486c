package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/serioha/ai-chatbot/models"
)

// MockProvider is a mock type for the Provider interface.
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Complete(ctx context.Context, messages []AIMessage, model string) (string, error) {
	args := m.Called(ctx, messages, model)
	return args.String(0), args.Error(1)
}

func testPolicy() FallbackPolicy {
	return FallbackPolicy{
		Order: []string{"mistral", "openai", "google"},
		Models: map[string]string{
			"mistral": "mistral-small-latest",
			"openai":  "gpt-4o-mini",
			"google":  "gemini-1.5-flash",
		},
		DefaultProvider: "openai",
		DefaultModel:    "gpt-4o-mini",
	}
}

func testHistory() []AIMessage {
	return []AIMessage{{Role: models.RoleUser, Content: "Hello"}}
}

func TestGenerateChatCompletion_PrimarySuccess(t *testing.T) {
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, "gpt-4o").
		Return("Hi there!\n<QUICK_QUESTIONS>\nA?\nB?\nC?\nD?\n</QUICK_QUESTIONS>", nil)

	d := NewDispatcher(map[string]Provider{"openai": openaiProv}, testPolicy())

	content, err := d.GenerateChatCompletion(context.Background(), testHistory(), "openai:gpt-4o")
	assert.NoError(t, err)
	assert.Contains(t, content, "Hi there!")
	openaiProv.AssertNumberOfCalls(t, "Complete", 1)
}

func TestGenerateChatCompletion_AugmentsPrompt(t *testing.T) {
	var sent []AIMessage
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, "gpt-4o").
		Run(func(args mock.Arguments) {
			sent = args.Get(1).([]AIMessage)
		}).
		Return("ok", nil)

	d := NewDispatcher(map[string]Provider{"openai": openaiProv}, testPolicy())

	_, err := d.GenerateChatCompletion(context.Background(), testHistory(), "openai:gpt-4o")
	assert.NoError(t, err)
	assert.Len(t, sent, 2, "a system message should be prepended")
	assert.Equal(t, models.RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Content, QuickQuestionsOpenTag)
	assert.Contains(t, sent[0].Content, QuickQuestionsCloseTag)
}

// Scenario: the primary provider fails and the configured mistral fallback
// succeeds. The caller sees the fallback's content and no error.
func TestGenerateChatCompletion_FallbackToMistral(t *testing.T) {
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, "gpt-4o").
		Return("", errors.New("rate limited"))

	mistralProv := &MockProvider{name: "mistral"}
	mistralProv.On("Complete", mock.Anything, mock.Anything, "mistral-small-latest").
		Return("fallback answer", nil)

	d := NewDispatcher(map[string]Provider{
		"openai":  openaiProv,
		"mistral": mistralProv,
	}, testPolicy())

	content, err := d.GenerateChatCompletion(context.Background(), testHistory(), "openai:gpt-4o")
	assert.NoError(t, err)
	assert.Equal(t, "fallback answer", content)
}

// The provider that failed as primary must not be retried by the cascade.
func TestGenerateChatCompletion_SkipsFailedPrimary(t *testing.T) {
	mistralProv := &MockProvider{name: "mistral"}
	mistralProv.On("Complete", mock.Anything, mock.Anything, "mistral-large-latest").
		Return("", errors.New("boom"))

	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, "gpt-4o-mini").
		Return("recovered", nil)

	d := NewDispatcher(map[string]Provider{
		"mistral": mistralProv,
		"openai":  openaiProv,
	}, testPolicy())

	content, err := d.GenerateChatCompletion(context.Background(), testHistory(), "mistral:mistral-large-latest")
	assert.NoError(t, err)
	assert.Equal(t, "recovered", content)
	// Exactly one mistral call: the failed primary, never a fallback retry.
	mistralProv.AssertNumberOfCalls(t, "Complete", 1)
}

func TestGenerateChatCompletion_Exhausted(t *testing.T) {
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("primary outage"))

	mistralProv := &MockProvider{name: "mistral"}
	mistralProv.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("also down"))

	d := NewDispatcher(map[string]Provider{
		"openai":  openaiProv,
		"mistral": mistralProv,
	}, testPolicy())

	_, err := d.GenerateChatCompletion(context.Background(), testHistory(), "openai:gpt-4o")
	var unavailable *CompletionUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Contains(t, unavailable.Error(), "primary outage", "should carry the original error's message")
}

// An unknown provider name is a failed primary attempt; the cascade still
// runs and the error type stays CompletionUnavailableError when it exhausts.
func TestGenerateChatCompletion_UnknownProvider(t *testing.T) {
	mistralProv := &MockProvider{name: "mistral"}
	mistralProv.On("Complete", mock.Anything, mock.Anything, "mistral-small-latest").
		Return("rescued", nil)

	d := NewDispatcher(map[string]Provider{"mistral": mistralProv}, testPolicy())

	content, err := d.GenerateChatCompletion(context.Background(), testHistory(), "acme:frontier-1")
	assert.NoError(t, err)
	assert.Equal(t, "rescued", content)

	empty := NewDispatcher(map[string]Provider{}, testPolicy())
	_, err = empty.GenerateChatCompletion(context.Background(), testHistory(), "acme:frontier-1")
	var unavailable *CompletionUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestGenerateConversationTitle_Success(t *testing.T) {
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, "gpt-4o-mini").
		Return("\"Trip Planning\"\n", nil)

	d := NewDispatcher(map[string]Provider{"openai": openaiProv}, testPolicy())

	title := d.GenerateConversationTitle(context.Background(), "Help me plan a trip", "openai:gpt-4o-mini")
	assert.Equal(t, "Trip Planning", title)
}

func TestGenerateConversationTitle_FallbackToGoogle(t *testing.T) {
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("down"))

	googleProv := &MockProvider{name: "google"}
	googleProv.On("Complete", mock.Anything, mock.Anything, "gemini-1.5-flash").
		Return("Weather Chat", nil)

	d := NewDispatcher(map[string]Provider{
		"openai": openaiProv,
		"google": googleProv,
	}, testPolicy())

	title := d.GenerateConversationTitle(context.Background(), "What's the weather?", "openai:gpt-4o-mini")
	assert.Equal(t, "Weather Chat", title)
}

// Scenario: the only attempt fails and no fallback credential is configured.
// The sentinel comes back; nothing is thrown.
func TestGenerateConversationTitle_SentinelOnTotalFailure(t *testing.T) {
	openaiProv := &MockProvider{name: "openai"}
	openaiProv.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("down"))

	d := NewDispatcher(map[string]Provider{"openai": openaiProv}, testPolicy())

	title := d.GenerateConversationTitle(context.Background(), "Hello", "openai:gpt-4o-mini")
	assert.Equal(t, models.DefaultConversationTitle, title)
}

// Scenario: no provider credentials at all. The catalog returns exactly one
// placeholder entry rather than an empty list.
func TestAvailableModels_NoneConfigured(t *testing.T) {
	d := NewDispatcher(map[string]Provider{}, testPolicy())

	modelList := d.AvailableModels()
	assert.Len(t, modelList, 1)
	assert.Equal(t, "no-models-configured", modelList[0].ID)
}

func TestAvailableModels_ConfiguredProviders(t *testing.T) {
	d := NewDispatcher(map[string]Provider{
		"openai": &MockProvider{name: "openai"},
		"google": &MockProvider{name: "google"},
	}, testPolicy())

	modelList := d.AvailableModels()
	assert.NotEmpty(t, modelList)
	for _, m := range modelList {
		assert.NotEqual(t, "mistral", m.Provider, "unconfigured providers must not appear")
		assert.True(t, strings.HasPrefix(m.ID, m.Provider+":"))
	}
}

func TestParseModelSelector(t *testing.T) {
	provider, model := ParseModelSelector("google:gemini-1.5-pro")
	assert.Equal(t, "google", provider)
	assert.Equal(t, "gemini-1.5-pro", model)

	provider, model = ParseModelSelector("gpt-4o")
	assert.Equal(t, "openai", provider, "bare model names default to openai")
	assert.Equal(t, "gpt-4o", model)

	provider, model = ParseModelSelector("  Mistral : mistral-large-latest ")
	assert.Equal(t, "mistral", provider)
	assert.Equal(t, "mistral-large-latest", model)
}
