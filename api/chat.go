package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/serioha/ai-chatbot/middleware"
	"github.com/serioha/ai-chatbot/models"
	"github.com/serioha/ai-chatbot/services"
	"github.com/serioha/ai-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// ListConversationsHandler returns the user's conversations, most recently
// updated first.
func (h *APIHandler) ListConversationsHandler(c *gin.Context) {
	userID := middleware.UserID(c)
	conversations, err := h.convRepo.GetConversationsByUserID(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// CreateConversationHandler creates an empty conversation with the sentinel
// title.
func (h *APIHandler) CreateConversationHandler(c *gin.Context) {
	userID := middleware.UserID(c)
	conversation := models.Conversation{UserID: userID}
	if err := h.convRepo.CreateConversation(&conversation); err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conversation})
}

// DeleteConversationHandler removes a conversation and all of its messages.
func (h *APIHandler) DeleteConversationHandler(c *gin.Context) {
	userID := middleware.UserID(c)
	conversationID, ok := h.ownedConversationID(c, userID)
	if !ok {
		return
	}
	if err := h.convRepo.DeleteConversation(conversationID); err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetMessagesHandler returns a conversation's messages in chronological
// order.
func (h *APIHandler) GetMessagesHandler(c *gin.Context) {
	userID := middleware.UserID(c)
	conversationID, parseErr := parseIDParam(c, "id")
	if parseErr != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid conversation id", parseErr)
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			utils.SendJSONError(c, http.StatusNotFound, "conversation not found", nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Model   string `json:"model"` // optional selector override
}

// SendMessageHandler persists the user's message, dispatches the completion
// and returns the persisted exchange. When the whole provider cascade fails,
// the user message is kept and 502 is returned.
func (h *APIHandler) SendMessageHandler(c *gin.Context) {
	userID := middleware.UserID(c)
	conversationID, parseErr := parseIDParam(c, "id")
	if parseErr != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid conversation id", parseErr)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "message content is required", err)
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), userID, conversationID, req.Content, req.Model)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			utils.SendJSONError(c, http.StatusNotFound, "conversation not found", nil)
			return
		}
		var unavailable *services.CompletionUnavailableError
		if errors.As(err, &unavailable) {
			utils.SendJSONError(c, http.StatusBadGateway, "The AI service is currently unavailable. Your message was saved; please try again.", unavailable)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ownedConversationID parses the :id param and verifies ownership.
func (h *APIHandler) ownedConversationID(c *gin.Context, userID uint) (uint, bool) {
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid conversation id", err)
		return 0, false
	}
	conversation, err := h.convRepo.GetConversationByID(conversationID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return 0, false
	}
	if conversation == nil || conversation.UserID != userID {
		utils.SendJSONError(c, http.StatusNotFound, "conversation not found", nil)
		return 0, false
	}
	return conversationID, true
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
