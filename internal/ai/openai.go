package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	defaultOpenAIModel   = "llama-3.1-8b-instant"
)

// OpenAIClient calls an OpenAI-compatible chat completions API such as Groq or Ollama.
type OpenAIClient struct {
	apiKey     string
	endpoint   Endpoint
	httpClient *http.Client
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIClient(apiKey string, endpoint Endpoint) *OpenAIClient {
	if endpoint.BaseURL == "" {
		endpoint.BaseURL = defaultOpenAIBaseURL
	}
	if endpoint.Model == "" {
		endpoint.Model = defaultOpenAIModel
	}
	endpoint.BaseURL = strings.TrimRight(endpoint.BaseURL, "/")

	return &OpenAIClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: endpoint.Timeout},
	}
}

// Chat sends the conversation to /chat/completions and returns the first choice.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if c.apiKey == "" {
		return "", nil, ErrNotConfigured
	}

	payload, err := json.Marshal(chatRequest{
		Model:          c.endpoint.Model,
		Messages:       messages,
		Temperature:    0.2,
		MaxTokens:      resolveMaxTokens(c.endpoint.MaxTokens),
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", nil, err
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil {
			return "", body, fmt.Errorf("chat completions error: %s", parsed.Error.Message)
		}
		return "", body, fmt.Errorf("chat completions error: status %d", response.StatusCode)
	}
	if decodeErr != nil {
		return "", body, decodeErr
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", body, ErrEmptyResponse
	}

	return parsed.Choices[0].Message.Content, body, nil
}
