package models

import (
	"time"
)

// User is a registered account. PasswordHash holds a bcrypt hash and is never
// serialized into API responses.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a bearer-token login session. Token is a UUID issued at login.
type Session struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserSettings holds per-user display and model preferences.
type UserSettings struct {
	UserID  uint   `json:"user_id" gorm:"primaryKey"`
	AIModel string `json:"ai_model"` // model selector, "provider:model"
	Theme   string `json:"theme"`    // "light" or "dark"
}

// Settings defaults applied when a user has no stored row yet.
const (
	DefaultAIModel = "openai:gpt-4o-mini"
	DefaultTheme   = "dark"
)
