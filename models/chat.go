package models

import (
	"time"
)

// Message roles. Stored as plain strings; anything else found in the
// database is normalized to RoleUser before use.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultConversationTitle is the sentinel title a conversation carries until
// the first user message has been turned into a real title.
const DefaultConversationTitle = "New Conversation"

// Conversation groups the messages of one user-visible chat thread.
// UpdatedAt is bumped on every message insert so conversation lists can be
// ordered by recency.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single chat message. Rows are immutable once created and are
// removed only when their conversation is deleted. Rendering state (such as
// which message is currently animating on a client) is never stored here.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index"`
	Role           string    `json:"role"` // "user", "assistant", "system"
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizeRole maps an arbitrary stored role value onto the closed
// {user, assistant, system} set. Unknown values default to "user".
// Used both when building LLM request history and when rendering.
func NormalizeRole(role string) string {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return role
	case "ai", "model", "bot":
		return RoleAssistant
	default:
		return RoleUser
	}
}
