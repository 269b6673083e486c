package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/serioha/ai-chatbot/models"
	"github.com/serioha/ai-chatbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 30 * 24 * time.Hour

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a new account and logs it in.
func (h *APIHandler) RegisterHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "username and password are required", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Password) < 8 {
		utils.SendJSONError(c, http.StatusBadRequest, "username must be at least 3 characters and password at least 8", nil)
		return
	}

	existing, err := h.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	if existing != nil {
		utils.SendJSONError(c, http.StatusConflict, "username already taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	user := models.User{Username: req.Username, PasswordHash: string(hash)}
	if err := h.userRepo.CreateUser(&user); err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	h.issueSession(c, &user, http.StatusCreated)
}

// LoginHandler verifies credentials and issues a session token.
func (h *APIHandler) LoginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "username and password are required", err)
		return
	}

	user, err := h.userRepo.GetUserByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.SendJSONError(c, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	h.issueSession(c, user, http.StatusOK)
}

// LogoutHandler deletes the current session.
func (h *APIHandler) LogoutHandler(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token != "" {
		if err := h.userRepo.DeleteSession(token); err != nil {
			log.Printf("WARN: [Auth] Failed to delete session on logout: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *APIHandler) issueSession(c *gin.Context, user *models.User, status int) {
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := h.userRepo.CreateSession(&session); err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	log.Printf("INFO: [Auth] Issued session for user ID %d ('%s').", user.ID, user.Username)
	c.JSON(status, gin.H{"token": session.Token, "user": user})
}
