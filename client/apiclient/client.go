// Package apiclient is the terminal client's HTTP binding to the chatbot
// server's /api surface.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/serioha/ai-chatbot/models"
	"github.com/serioha/ai-chatbot/services"
)

// Client talks to the chatbot server. Token is set after Login/Register and
// sent as a bearer credential on every subsequent call.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Completion requests may cascade through several providers.
			Timeout: 180 * time.Second,
		},
	}
}

// SendMessageResult mirrors the server's exchange response.
type SendMessageResult struct {
	UserMessage      models.Message      `json:"user_message"`
	AssistantMessage models.Message      `json:"assistant_message"`
	Conversation     models.Conversation `json:"conversation"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(username, password string) (*models.User, error) {
	var resp authResponse
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

// Register creates an account and stores the session token on the client.
func (c *Client) Register(username, password string) (*models.User, error) {
	var resp authResponse
	err := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

// Conversations lists the user's conversations, most recent first.
func (c *Client) Conversations() ([]models.Conversation, error) {
	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := c.do(http.MethodGet, "/api/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// CreateConversation starts a new conversation with the sentinel title.
func (c *Client) CreateConversation() (*models.Conversation, error) {
	var resp struct {
		Conversation models.Conversation `json:"conversation"`
	}
	if err := c.do(http.MethodPost, "/api/conversations", map[string]string{}, &resp); err != nil {
		return nil, err
	}
	return &resp.Conversation, nil
}

// Messages returns a conversation's messages in chronological order.
func (c *Client) Messages(conversationID uint) ([]models.Message, error) {
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	path := fmt.Sprintf("/api/conversations/%d/messages", conversationID)
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage posts a user message and returns the persisted exchange.
func (c *Client) SendMessage(conversationID uint, content, model string) (*SendMessageResult, error) {
	var resp SendMessageResult
	path := fmt.Sprintf("/api/conversations/%d/messages", conversationID)
	body := map[string]string{"content": content}
	if model != "" {
		body["model"] = model
	}
	if err := c.do(http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Models fetches the selectable model catalog.
func (c *Client) Models() ([]services.ModelInfo, error) {
	var resp struct {
		Models []services.ModelInfo `json:"models"`
	}
	if err := c.do(http.MethodGet, "/api/models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// Settings fetches the user's settings.
func (c *Client) Settings() (*models.UserSettings, error) {
	var resp struct {
		Settings models.UserSettings `json:"settings"`
	}
	if err := c.do(http.MethodGet, "/api/settings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Settings, nil
}

func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (status %d)", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
