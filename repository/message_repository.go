package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/serioha/ai-chatbot/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for interacting with message data.
// Messages are append-only: there is deliberately no update operation.
type MessageRepository interface {
	CreateMessage(message *models.Message) error
	GetMessagesByConversationID(conversationID uint) ([]models.Message, error)
	CountByConversationID(conversationID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateMessage appends a message to a conversation.
func (r *messageRepository) CreateMessage(message *models.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ConversationID == 0 {
		return errors.New("message must carry a conversation ID")
	}
	message.Role = models.NormalizeRole(message.Role)
	if err := r.db.Create(message).Error; err != nil {
		log.Printf("ERROR: [MessageRepository] Failed to create message in conversation ID %d: %v", message.ConversationID, err)
		return fmt.Errorf("failed to create message in conversation ID %d: %w", message.ConversationID, err)
	}
	log.Printf("INFO: [MessageRepository] Created message ID %d (role=%s) in conversation ID %d.", message.ID, message.Role, message.ConversationID)
	return nil
}

// GetMessagesByConversationID retrieves all messages of a conversation in
// chronological order. An empty conversation yields an empty slice, not an
// error.
func (r *messageRepository) GetMessagesByConversationID(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at asc, id asc").Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: [MessageRepository] Failed to retrieve messages for conversation ID %d: %v", conversationID, err)
		return nil, fmt.Errorf("failed to retrieve messages for conversation ID %d: %w", conversationID, err)
	}
	return messages, nil
}

// CountByConversationID returns the number of messages in a conversation.
func (r *messageRepository) CountByConversationID(conversationID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages for conversation ID %d: %w", conversationID, err)
	}
	return count, nil
}
