package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serioha/ai-chatbot/models"
)

func TestFoldForGemini_SystemFoldedIntoFirstUserMessage(t *testing.T) {
	messages := []AIMessage{
		{Role: models.RoleSystem, Content: "Append quick questions."},
		{Role: models.RoleUser, Content: "Hello"},
		{Role: models.RoleAssistant, Content: "Hi there"},
		{Role: models.RoleUser, Content: "Tell me more"},
	}

	contents := foldForGemini(messages)

	assert.Len(t, contents, 3, "system entries must be stripped")
	for _, c := range contents {
		assert.NotEqual(t, "system", c.Role)
	}
	assert.Equal(t, "user", contents[0].Role)
	assert.Contains(t, contents[0].Parts[0].Text, "Append quick questions.")
	assert.Contains(t, contents[0].Parts[0].Text, "Hello")
	assert.Equal(t, "model", contents[1].Role, "assistant maps to Gemini's model role")
	// Only the first user message absorbs the instruction.
	assert.Equal(t, "Tell me more", contents[2].Parts[0].Text)
}

func TestFoldForGemini_SystemOnlyHistory(t *testing.T) {
	messages := []AIMessage{
		{Role: models.RoleSystem, Content: "Instructions only."},
	}

	contents := foldForGemini(messages)

	assert.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "Instructions only.", contents[0].Parts[0].Text)
}

func TestFoldForGemini_NoSystemMessage(t *testing.T) {
	messages := []AIMessage{
		{Role: models.RoleUser, Content: "Hello"},
	}

	contents := foldForGemini(messages)

	assert.Len(t, contents, 1)
	assert.Equal(t, "Hello", contents[0].Parts[0].Text)
}
