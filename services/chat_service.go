package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/serioha/ai-chatbot/models"
	"github.com/serioha/ai-chatbot/repository"
)

// ErrConversationNotFound is returned when the conversation does not exist or
// does not belong to the requesting user. Handlers map it to 404.
var ErrConversationNotFound = errors.New("conversation not found")

// SendMessageResult carries both halves of one completed exchange, plus the
// conversation as it looks afterwards (its title may just have been
// generated).
type SendMessageResult struct {
	UserMessage      models.Message      `json:"user_message"`
	AssistantMessage models.Message      `json:"assistant_message"`
	Conversation     models.Conversation `json:"conversation"`
}

// ChatService orchestrates one message exchange: persist the user message,
// dispatch the completion, persist the assistant message.
type ChatService interface {
	SendMessage(ctx context.Context, userID, conversationID uint, content, modelOverride string) (*SendMessageResult, error)
	History(ctx context.Context, userID, conversationID uint) ([]models.Message, error)
}

type chatService struct {
	messageRepo  repository.MessageRepository
	convRepo     repository.ConversationRepository
	settingsRepo repository.SettingsRepository
	completions  CompletionService
}

// NewChatService creates a chat service instance.
func NewChatService(
	messageRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	settingsRepo repository.SettingsRepository,
	completions CompletionService,
) ChatService {
	return &chatService{
		messageRepo:  messageRepo,
		convRepo:     convRepo,
		settingsRepo: settingsRepo,
		completions:  completions,
	}
}

// SendMessage runs the full exchange. On dispatcher exhaustion the user
// message stays persisted, no assistant row is written, and the
// CompletionUnavailableError propagates to the handler.
func (s *chatService) SendMessage(ctx context.Context, userID, conversationID uint, content, modelOverride string) (*SendMessageResult, error) {
	conversation, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	selector := modelOverride
	if selector == "" {
		settings, settingsErr := s.settingsRepo.GetSettings(userID)
		if settingsErr != nil {
			log.Printf("WARN: [ChatService] Failed to load settings for user ID %d, using default model: %v", userID, settingsErr)
			selector = models.DefaultAIModel
		} else {
			selector = settings.AIModel
		}
	}

	userMessage := models.Message{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        content,
	}
	if err := s.messageRepo.CreateMessage(&userMessage); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}
	if err := s.convRepo.Touch(conversationID); err != nil {
		log.Printf("WARN: [ChatService] Failed to bump conversation ID %d after user message: %v", conversationID, err)
	}

	history, err := s.messageRepo.GetMessagesByConversationID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	reply, err := s.completions.GenerateChatCompletion(ctx, toAIMessages(history), selector)
	if err != nil {
		// The user message stays; no partial assistant row is written.
		return nil, err
	}

	assistantMessage := models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        reply,
	}
	if err := s.messageRepo.CreateMessage(&assistantMessage); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	if err := s.convRepo.Touch(conversationID); err != nil {
		log.Printf("WARN: [ChatService] Failed to bump conversation ID %d after assistant message: %v", conversationID, err)
	}

	// One-time title generation from the first user message. Best effort:
	// a degraded title never fails the exchange.
	if conversation.Title == models.DefaultConversationTitle {
		title := s.completions.GenerateConversationTitle(ctx, content, selector)
		if title != models.DefaultConversationTitle {
			if err := s.convRepo.UpdateTitle(conversationID, title); err != nil {
				log.Printf("WARN: [ChatService] Failed to store generated title for conversation ID %d: %v", conversationID, err)
			} else {
				conversation.Title = title
			}
		}
	}

	return &SendMessageResult{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Conversation:     *conversation,
	}, nil
}

// History returns the chronological message list, ownership-checked.
func (s *chatService) History(ctx context.Context, userID, conversationID uint) ([]models.Message, error) {
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return nil, err
	}
	return s.messageRepo.GetMessagesByConversationID(conversationID)
}

func (s *chatService) ownedConversation(userID, conversationID uint) (*models.Conversation, error) {
	conversation, err := s.convRepo.GetConversationByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil || conversation.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

// toAIMessages projects stored messages onto the normalized provider shape.
func toAIMessages(messages []models.Message) []AIMessage {
	out := make([]AIMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, AIMessage{
			Role:    models.NormalizeRole(m.Role),
			Content: m.Content,
		})
	}
	return out
}
