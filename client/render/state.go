package render

import (
	"github.com/serioha/ai-chatbot/models"
)

// Mode is the render decision for one message.
type Mode int

const (
	// RevealInstantly shows the full rendered content immediately.
	RevealInstantly Mode = iota
	// AnimateFromEmpty reveals the content character by character.
	AnimateFromEmpty
)

// MessageView is the slice of a message the state machine needs.
type MessageView struct {
	ID      uint
	Role    string
	Content string
}

// Decision is the per-message render instruction: the mode, the display text
// with the quick-questions block stripped, and the extracted question list.
type Decision struct {
	ID        uint
	Role      string
	Mode      Mode
	Display   string
	Questions []string
}

// State tracks which message of the active conversation is animating.
// At most one message per conversation ever animates; the whole state is
// discarded when the active conversation changes. This lives only in the
// presentation layer -- nothing here is ever persisted.
type State struct {
	conversationID uint
	observedCount  int
	animatingID    uint // 0 = none
}

// NewState returns an empty state, ready for its first Observe call.
func NewState() *State {
	return &State{}
}

// Observe evaluates the current message list for a conversation and returns
// a render decision per message, updating animation state:
//
//  1. A conversation switch resets everything before any other rule runs, so
//     animation never bleeds between conversations.
//  2. The first non-empty observation is history: nothing animates.
//  3. When the list grows, only the newly appended slice is inspected; the
//     last appended assistant message (if any) becomes the animating one.
//     User messages never animate.
func (s *State) Observe(conversationID uint, messages []MessageView) []Decision {
	if conversationID != s.conversationID {
		s.conversationID = conversationID
		s.observedCount = 0
		s.animatingID = 0
	}

	switch {
	case s.observedCount == 0 && len(messages) > 0:
		// Initial load: everything is history.
		s.animatingID = 0
	case len(messages) > s.observedCount:
		appended := messages[s.observedCount:]
		for i := len(appended) - 1; i >= 0; i-- {
			if isAssistant(appended[i].Role) {
				s.animatingID = appended[i].ID
				break
			}
		}
	}
	s.observedCount = len(messages)

	decisions := make([]Decision, 0, len(messages))
	for _, m := range messages {
		d := Decision{ID: m.ID, Role: m.Role, Mode: RevealInstantly, Display: m.Content}
		if isAssistant(m.Role) {
			d.Display, d.Questions = Parse(m.Content)
			if m.ID == s.animatingID {
				d.Mode = AnimateFromEmpty
			}
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// FinishAnimation records that a message finished revealing. The clear is
// guarded: a stale completion signal from a message that is no longer the
// animating one must not disturb the current animation.
func (s *State) FinishAnimation(messageID uint) {
	if s.animatingID == messageID {
		s.animatingID = 0
	}
}

// AnimatingID reports the currently animating message, if any.
func (s *State) AnimatingID() (uint, bool) {
	return s.animatingID, s.animatingID != 0
}

// Reset discards all state, as when the conversation view unmounts.
func (s *State) Reset() {
	s.conversationID = 0
	s.observedCount = 0
	s.animatingID = 0
}

// isAssistant uses the same role normalization the server applies before
// dispatching, so unexpected stored roles behave identically on both sides.
func isAssistant(role string) bool {
	return models.NormalizeRole(role) == models.RoleAssistant
}
