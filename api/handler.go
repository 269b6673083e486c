package api

import (
	"github.com/serioha/ai-chatbot/repository"
	"github.com/serioha/ai-chatbot/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// APIHandler holds all dependencies for API handlers, such as repositories
// and services.
type APIHandler struct {
	userRepo     repository.UserRepository
	convRepo     repository.ConversationRepository
	messageRepo  repository.MessageRepository
	settingsRepo repository.SettingsRepository
	chatService  services.ChatService
	completions  services.CompletionService
	db           *gorm.DB
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	userRepo repository.UserRepository,
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	settingsRepo repository.SettingsRepository,
	chatService services.ChatService,
	completions services.CompletionService,
	db *gorm.DB,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		convRepo:     convRepo,
		messageRepo:  messageRepo,
		settingsRepo: settingsRepo,
		chatService:  chatService,
		completions:  completions,
		db:           db,
	}
}

// ModelsHandler returns the selectable model catalog. Pure config lookup, no
// provider network calls.
func (h *APIHandler) ModelsHandler(c *gin.Context) {
	c.JSON(200, gin.H{"models": h.completions.AvailableModels()})
}
