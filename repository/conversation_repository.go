package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/serioha/ai-chatbot/models"

	"gorm.io/gorm"
)

// ConversationRepository defines the interface for interacting with
// conversation data.
type ConversationRepository interface {
	CreateConversation(conversation *models.Conversation) error
	GetConversationByID(conversationID uint) (*models.Conversation, error)
	GetConversationsByUserID(userID uint) ([]*models.Conversation, error)
	UpdateTitle(conversationID uint, title string) error
	Touch(conversationID uint) error
	DeleteConversation(conversationID uint) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new instance of ConversationRepository.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// CreateConversation creates a new conversation. An empty title is replaced
// by the sentinel default.
func (r *conversationRepository) CreateConversation(conversation *models.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if conversation.Title == "" {
		conversation.Title = models.DefaultConversationTitle
	}
	if err := r.db.Create(conversation).Error; err != nil {
		log.Printf("ERROR: [ConversationRepository] Failed to create conversation for user ID %d: %v", conversation.UserID, err)
		return fmt.Errorf("failed to create conversation for user ID %d: %w", conversation.UserID, err)
	}
	log.Printf("INFO: [ConversationRepository] Created conversation ID %d for user ID %d.", conversation.ID, conversation.UserID)
	return nil
}

// GetConversationByID retrieves a conversation by ID. Returns (nil, nil) when
// not found.
func (r *conversationRepository) GetConversationByID(conversationID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.First(&conversation, conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [ConversationRepository] Failed to retrieve conversation ID %d: %v", conversationID, err)
		return nil, fmt.Errorf("failed to retrieve conversation ID %d: %w", conversationID, err)
	}
	return &conversation, nil
}

// GetConversationsByUserID retrieves all conversations for a user, most
// recently updated first.
func (r *conversationRepository) GetConversationsByUserID(userID uint) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.Where("user_id = ?", userID).Order("updated_at desc").Find(&conversations).Error
	if err != nil {
		log.Printf("ERROR: [ConversationRepository] Failed to retrieve conversations for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("failed to retrieve conversations for user ID %d: %w", userID, err)
	}
	return conversations, nil
}

// UpdateTitle rewrites the conversation title. Used exactly once per
// conversation, when the sentinel title is replaced by a generated one.
func (r *conversationRepository) UpdateTitle(conversationID uint, title string) error {
	err := r.db.Model(&models.Conversation{}).Where("id = ?", conversationID).Update("title", title).Error
	if err != nil {
		log.Printf("ERROR: [ConversationRepository] Failed to update title for conversation ID %d: %v", conversationID, err)
		return fmt.Errorf("failed to update title for conversation ID %d: %w", conversationID, err)
	}
	log.Printf("INFO: [ConversationRepository] Updated title of conversation ID %d to '%s'.", conversationID, title)
	return nil
}

// Touch bumps the conversation's UpdatedAt. Called on every message insert; a
// single-row UPDATE, so no cross-request locking is needed.
func (r *conversationRepository) Touch(conversationID uint) error {
	err := r.db.Model(&models.Conversation{}).Where("id = ?", conversationID).Update("updated_at", time.Now()).Error
	if err != nil {
		log.Printf("ERROR: [ConversationRepository] Failed to touch conversation ID %d: %v", conversationID, err)
		return fmt.Errorf("failed to touch conversation ID %d: %w", conversationID, err)
	}
	return nil
}

// DeleteConversation removes a conversation and all of its messages.
func (r *conversationRepository) DeleteConversation(conversationID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "conversation_id = ?", conversationID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, conversationID).Error
	})
	if err != nil {
		log.Printf("ERROR: [ConversationRepository] Failed to delete conversation ID %d: %v", conversationID, err)
		return fmt.Errorf("failed to delete conversation ID %d: %w", conversationID, err)
	}
	log.Printf("INFO: [ConversationRepository] Deleted conversation ID %d and its messages.", conversationID)
	return nil
}
