package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/serioha/ai-chatbot/models"
)

// newTestDB opens a named in-memory database unique to the test, so parallel
// tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.UserSettings{},
		&models.Conversation{},
		&models.Message{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Username: "alice", PasswordHash: "irrelevant"}
	require.NoError(t, NewUserRepository(db).CreateUser(user))
	return user
}

func TestUserRepository_GetUserByUsername_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.GetUserByUsername("nobody")

	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_SessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	session := &models.Session{
		Token:     "token-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.CreateSession(session))

	got, err := repo.GetSession("token-1")
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.DeleteSession("token-1"))
	got, err = repo.GetSession("token-1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_ExpiredSessionCleanedUp(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	require.NoError(t, repo.CreateSession(&models.Session{
		Token:     "stale",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	got, err := repo.GetSession("stale")
	assert.NoError(t, err)
	assert.Nil(t, got)

	var count int64
	db.Model(&models.Session{}).Where("token = ?", "stale").Count(&count)
	assert.Zero(t, count, "expired row is removed on lookup")
}

func TestSettingsRepository_DefaultsWhenNoRow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewSettingsRepository(db)

	settings, err := repo.GetSettings(user.ID)

	assert.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, models.DefaultAIModel, settings.AIModel)
	assert.Equal(t, models.DefaultTheme, settings.Theme)

	// Reading defaults does not create a row.
	var count int64
	db.Model(&models.UserSettings{}).Count(&count)
	assert.Zero(t, count)
}

func TestSettingsRepository_UpsertCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewSettingsRepository(db)

	_, err := repo.UpsertSettings(&models.UserSettings{
		UserID: user.ID, AIModel: "mistral:mistral-small-latest", Theme: "dark",
	})
	require.NoError(t, err)

	_, err = repo.UpsertSettings(&models.UserSettings{
		UserID: user.ID, AIModel: "google:gemini-1.5-flash", Theme: "light",
	})
	require.NoError(t, err)

	settings, err := repo.GetSettings(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "google:gemini-1.5-flash", settings.AIModel)
	assert.Equal(t, "light", settings.Theme)

	var count int64
	db.Model(&models.UserSettings{}).Count(&count)
	assert.Equal(t, int64(1), count, "upsert keeps a single row per user")
}

func TestConversationRepository_EmptyTitleGetsSentinel(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewConversationRepository(db)

	conversation := &models.Conversation{UserID: user.ID}
	require.NoError(t, repo.CreateConversation(conversation))

	assert.Equal(t, models.DefaultConversationTitle, conversation.Title)
}

func TestConversationRepository_ListOrderedByRecency(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewConversationRepository(db)

	first := &models.Conversation{UserID: user.ID, Title: "First"}
	second := &models.Conversation{UserID: user.ID, Title: "Second"}
	require.NoError(t, repo.CreateConversation(first))
	require.NoError(t, repo.CreateConversation(second))

	// Touching the older conversation moves it to the front.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Touch(first.ID))

	conversations, err := repo.GetConversationsByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "First", conversations[0].Title)
	assert.Equal(t, "Second", conversations[1].Title)
}

func TestConversationRepository_TouchBumpsUpdatedAt(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	repo := NewConversationRepository(db)

	conversation := &models.Conversation{UserID: user.ID, Title: "T"}
	require.NoError(t, repo.CreateConversation(conversation))
	before := conversation.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Touch(conversation.ID))

	got, err := repo.GetConversationByID(conversation.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.UpdatedAt.After(before))
}

func TestConversationRepository_DeleteCascadesToMessages(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	convRepo := NewConversationRepository(db)
	messageRepo := NewMessageRepository(db)

	conversation := &models.Conversation{UserID: user.ID, Title: "Doomed"}
	require.NoError(t, convRepo.CreateConversation(conversation))
	require.NoError(t, messageRepo.CreateMessage(&models.Message{
		ConversationID: conversation.ID, Role: models.RoleUser, Content: "Hello",
	}))
	require.NoError(t, messageRepo.CreateMessage(&models.Message{
		ConversationID: conversation.ID, Role: models.RoleAssistant, Content: "Hi",
	}))

	require.NoError(t, convRepo.DeleteConversation(conversation.ID))

	got, err := convRepo.GetConversationByID(conversation.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	count, err := messageRepo.CountByConversationID(conversation.ID)
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestMessageRepository_ChronologicalOrder(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	convRepo := NewConversationRepository(db)
	messageRepo := NewMessageRepository(db)

	conversation := &models.Conversation{UserID: user.ID, Title: "T"}
	require.NoError(t, convRepo.CreateConversation(conversation))

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, messageRepo.CreateMessage(&models.Message{
			ConversationID: conversation.ID, Role: models.RoleUser, Content: content,
		}))
	}

	messages, err := messageRepo.GetMessagesByConversationID(conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "two", messages[1].Content)
	assert.Equal(t, "three", messages[2].Content)
}

func TestMessageRepository_NormalizesRoleOnInsert(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	convRepo := NewConversationRepository(db)
	messageRepo := NewMessageRepository(db)

	conversation := &models.Conversation{UserID: user.ID, Title: "T"}
	require.NoError(t, convRepo.CreateConversation(conversation))

	message := &models.Message{ConversationID: conversation.ID, Role: "ai", Content: "Hi"}
	require.NoError(t, messageRepo.CreateMessage(message))

	assert.Equal(t, models.RoleAssistant, message.Role)
}

func TestMessageRepository_RejectsMissingConversationID(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))

	err := repo.CreateMessage(&models.Message{Role: models.RoleUser, Content: "orphan"})

	assert.Error(t, err)
}
