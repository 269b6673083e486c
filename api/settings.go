package api

import (
	"net/http"
	"strings"

	"github.com/serioha/ai-chatbot/middleware"
	"github.com/serioha/ai-chatbot/services"
	"github.com/serioha/ai-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// GetSettingsHandler returns the user's settings, defaults-populated when no
// row exists yet.
func (h *APIHandler) GetSettingsHandler(c *gin.Context) {
	userID := middleware.UserID(c)
	settings, err := h.settingsRepo.GetSettings(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type updateSettingsRequest struct {
	AIModel *string `json:"ai_model"`
	Theme   *string `json:"theme"`
}

// UpdateSettingsHandler applies a partial settings update. Malformed fields
// come back as a structured field-level error list, never as a provider
// failure.
func (h *APIHandler) UpdateSettingsHandler(c *gin.Context) {
	userID := middleware.UserID(c)

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid settings payload", err)
		return
	}

	if vErr := validateSettings(&req); vErr != nil {
		utils.SendValidationError(c, vErr.Fields)
		return
	}

	settings, err := h.settingsRepo.GetSettings(userID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	if req.AIModel != nil {
		settings.AIModel = strings.TrimSpace(*req.AIModel)
	}
	if req.Theme != nil {
		settings.Theme = *req.Theme
	}

	updated, err := h.settingsRepo.UpsertSettings(settings)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": updated})
}

func validateSettings(req *updateSettingsRequest) *services.ValidationError {
	var fieldErrs []services.FieldError
	if req.Theme != nil && *req.Theme != "light" && *req.Theme != "dark" {
		fieldErrs = append(fieldErrs, services.FieldError{
			Field:   "theme",
			Message: "must be 'light' or 'dark'",
		})
	}
	if req.AIModel != nil {
		_, model := services.ParseModelSelector(*req.AIModel)
		if strings.TrimSpace(*req.AIModel) == "" || model == "" {
			fieldErrs = append(fieldErrs, services.FieldError{
				Field:   "ai_model",
				Message: "must be a model name or 'provider:model' selector",
			})
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return &services.ValidationError{Fields: fieldErrs}
}
