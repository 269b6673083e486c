package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/serioha/ai-chatbot/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for interacting with user accounts and
// their login sessions.
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(userID uint) (*models.User, error)
	CreateSession(session *models.Session) error
	GetSession(token string) (*models.Session, error)
	DeleteSession(token string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser creates a new user account.
func (r *userRepository) CreateUser(user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if err := r.db.Create(user).Error; err != nil {
		log.Printf("ERROR: [UserRepository] Failed to create user '%s': %v", user.Username, err)
		return fmt.Errorf("failed to create user '%s': %w", user.Username, err)
	}
	log.Printf("INFO: [UserRepository] Created user ID %d ('%s').", user.ID, user.Username)
	return nil
}

// GetUserByUsername retrieves a user by username. Returns (nil, nil) when the
// user does not exist.
func (r *userRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [UserRepository] Failed to fetch user '%s': %v", username, err)
		return nil, fmt.Errorf("failed to fetch user '%s': %w", username, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID. Returns (nil, nil) when not found.
func (r *userRepository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [UserRepository] Failed to fetch user ID %d: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch user ID %d: %w", userID, err)
	}
	return &user, nil
}

// CreateSession stores a new login session.
func (r *userRepository) CreateSession(session *models.Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token cannot be empty")
	}
	if err := r.db.Create(session).Error; err != nil {
		log.Printf("ERROR: [UserRepository] Failed to create session for user ID %d: %v", session.UserID, err)
		return fmt.Errorf("failed to create session for user ID %d: %w", session.UserID, err)
	}
	return nil
}

// GetSession retrieves a session by token. Expired or unknown tokens yield
// (nil, nil); expired rows are cleaned up on the way.
func (r *userRepository) GetSession(token string) (*models.Session, error) {
	var session models.Session
	err := r.db.First(&session, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [UserRepository] Failed to fetch session: %v", err)
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		if delErr := r.db.Delete(&session).Error; delErr != nil {
			log.Printf("WARN: [UserRepository] Failed to delete expired session: %v", delErr)
		}
		return nil, nil
	}
	return &session, nil
}

// DeleteSession removes a session (logout). Deleting an unknown token is not
// an error.
func (r *userRepository) DeleteSession(token string) error {
	if err := r.db.Delete(&models.Session{}, "token = ?", token).Error; err != nil {
		log.Printf("ERROR: [UserRepository] Failed to delete session: %v", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
