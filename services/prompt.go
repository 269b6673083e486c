package services

import (
	"github.com/serioha/ai-chatbot/models"
)

// Wire contract for the embedded follow-up block. The client strips it with a
// single non-greedy match, so the literal tags must never change.
const (
	QuickQuestionsOpenTag  = "<QUICK_QUESTIONS>"
	QuickQuestionsCloseTag = "</QUICK_QUESTIONS>"
)

const quickQuestionsInstruction = "After your answer, append a block of exactly 4 short follow-up " +
	"questions the user might ask next, one per line, wrapped in literal " +
	QuickQuestionsOpenTag + " and " + QuickQuestionsCloseTag + " tags. " +
	"Do not number the questions and do not add any text after the closing tag."

const titlePrompt = "Generate a short title (at most 5 words) for a conversation that starts " +
	"with the following message. Reply with the title only, no quotes, no punctuation at the end."

// augmentHistory guarantees the outgoing history instructs the provider to
// emit the quick-questions block. If a system message already exists the
// instruction is appended to it; otherwise a new system message is prepended.
// Roles are normalized on the way, and the input slice is left untouched.
func augmentHistory(history []AIMessage) []AIMessage {
	out := make([]AIMessage, 0, len(history)+1)
	injected := false
	for _, m := range history {
		role := models.NormalizeRole(m.Role)
		content := m.Content
		if role == models.RoleSystem && !injected {
			content = content + "\n\n" + quickQuestionsInstruction
			injected = true
		}
		out = append(out, AIMessage{Role: role, Content: content})
	}
	if !injected {
		out = append([]AIMessage{{Role: models.RoleSystem, Content: quickQuestionsInstruction}}, out...)
	}
	return out
}
