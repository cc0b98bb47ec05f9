package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-3-flash-preview"
)

// GeminiClient calls the Google Generative Language API.
type GeminiClient struct {
	apiKey     string
	endpoint   Endpoint
	httpClient *http.Client
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGeminiClient creates a Gemini client for one API key.
func NewGeminiClient(apiKey string, endpoint Endpoint) *GeminiClient {
	if endpoint.BaseURL == "" {
		endpoint.BaseURL = defaultGeminiBaseURL
	}
	if endpoint.Model == "" {
		endpoint.Model = defaultGeminiModel
	}
	endpoint.BaseURL = strings.TrimRight(endpoint.BaseURL, "/")

	return &GeminiClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: endpoint.Timeout},
	}
}

// Chat sends the conversation to Gemini and returns the text and the raw API response.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if c.apiKey == "" {
		return "", nil, ErrNotConfigured
	}

	var system []geminiPart
	contents := make([]geminiContent, 0, len(messages))
	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case "system":
			system = append(system, geminiPart{Text: text})
		case "assistant", "model":
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}})
		}
	}
	if len(contents) == 0 {
		return "", nil, fmt.Errorf("gemini: request has no user content")
	}

	request := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiConfig{
			Temperature:      0.2,
			MaxOutputTokens:  resolveMaxTokens(c.endpoint.MaxTokens),
			ResponseMimeType: "application/json",
		},
	}
	if len(system) > 0 {
		request.SystemInstruction = &geminiContent{Parts: system}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", nil, err
	}

	target := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint.BaseURL, url.PathEscape(c.endpoint.Model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("gemini: %w", redactKey(err, c.apiKey))
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", nil, err
	}

	var parsed geminiResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil {
			return "", body, fmt.Errorf("gemini api error: %s", parsed.Error.Message)
		}
		return "", body, fmt.Errorf("gemini api error: status %d", response.StatusCode)
	}
	if decodeErr != nil {
		return "", body, decodeErr
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", body, fmt.Errorf("gemini blocked the prompt: %s", parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", body, ErrEmptyResponse
	}

	var builder strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}

	return builder.String(), body, nil
}

// redactKey keeps the key that travels in the query string out of logged errors.
// The cause stays reachable through errors.Is and errors.As.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
