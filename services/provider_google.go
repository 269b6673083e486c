package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/serioha/ai-chatbot/models"
)

// googleProvider calls the Gemini generateContent API with a plain HTTP
// client; there is no OpenAI-compatible endpoint for it. Gemini has no system
// role: system entries are stripped and their content folded into the first
// user message, and assistant entries are sent under Gemini's "model" role.
type googleProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleProvider creates the google provider. baseURL may be empty to use
// the vendor default.
func NewGoogleProvider(apiKey, baseURL string) Provider {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &googleProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *googleProvider) Name() string { return "google" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *googleProvider) Complete(ctx context.Context, messages []AIMessage, model string) (string, error) {
	contents := foldForGemini(messages)
	if len(contents) == 0 {
		return "", errors.New("google: no sendable messages after role folding")
	}

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("google: failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("google: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("google: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google: API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("google: failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("google: API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("google returned empty response")
	}

	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}

// foldForGemini converts the normalized history into Gemini contents:
// system entries are removed and their text is prepended to the first user
// message; assistant entries become role "model".
func foldForGemini(messages []AIMessage) []geminiContent {
	var systemTexts []string
	var rest []AIMessage
	for _, m := range messages {
		if models.NormalizeRole(m.Role) == models.RoleSystem {
			if strings.TrimSpace(m.Content) != "" {
				systemTexts = append(systemTexts, m.Content)
			}
			continue
		}
		rest = append(rest, m)
	}

	systemPrefix := strings.Join(systemTexts, "\n\n")
	folded := systemPrefix != ""

	contents := make([]geminiContent, 0, len(rest))
	for _, m := range rest {
		role := "user"
		text := m.Content
		if models.NormalizeRole(m.Role) == models.RoleAssistant {
			role = "model"
		} else if folded {
			// First user-role message absorbs the system instructions.
			text = systemPrefix + "\n\n" + text
			folded = false
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: text}},
		})
	}

	// History with system instructions but no user message to fold into.
	if folded && systemPrefix != "" {
		contents = append([]geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: systemPrefix}},
		}}, contents...)
	}
	return contents
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
