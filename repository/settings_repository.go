package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/serioha/ai-chatbot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository defines the interface for per-user settings.
type SettingsRepository interface {
	GetSettings(userID uint) (*models.UserSettings, error)
	UpsertSettings(settings *models.UserSettings) (*models.UserSettings, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetSettings retrieves settings for a user. If the user has no stored row
// yet, a defaults-populated object is returned with no error; the row is not
// created until the user actually changes something.
func (r *settingsRepository) GetSettings(userID uint) (*models.UserSettings, error) {
	if userID == 0 {
		return nil, errors.New("user ID cannot be zero")
	}
	var settings models.UserSettings
	err := r.db.First(&settings, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserSettings{
				UserID:  userID,
				AIModel: models.DefaultAIModel,
				Theme:   models.DefaultTheme,
			}, nil
		}
		log.Printf("ERROR: [SettingsRepository] Failed to fetch settings for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch settings for user ID %d: %w", userID, err)
	}
	return &settings, nil
}

// UpsertSettings creates or updates the settings row for a user.
func (r *settingsRepository) UpsertSettings(settings *models.UserSettings) (*models.UserSettings, error) {
	if settings == nil || settings.UserID == 0 {
		return nil, errors.New("settings must carry a user ID")
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ai_model", "theme"}),
	}).Create(settings).Error
	if err != nil {
		log.Printf("ERROR: [SettingsRepository] Failed to upsert settings for user ID %d: %v", settings.UserID, err)
		return nil, fmt.Errorf("failed to upsert settings for user ID %d: %w", settings.UserID, err)
	}
	log.Printf("INFO: [SettingsRepository] Saved settings for user ID %d (model='%s', theme='%s').", settings.UserID, settings.AIModel, settings.Theme)
	return settings, nil
}
