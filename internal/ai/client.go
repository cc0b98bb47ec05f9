package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultMaxTokens = 4096

var (
	// ErrNotConfigured marks an engine that was skipped because it has no credentials.
	ErrNotConfigured = errors.New("engine is not configured")
	ErrEmptyResponse = errors.New("engine returned an empty response")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends a conversation to a generation engine and returns the text and the raw response.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

// Endpoint configures a remote engine.
type Endpoint struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Factory builds a client for an API key.
type Factory func(apiKey string) Client

// NewFactory returns a client factory for the named provider.
func NewFactory(provider string, endpoint Endpoint) (Factory, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		return func(apiKey string) Client { return NewGeminiClient(apiKey, endpoint) }, nil
	case ProviderOpenAI, "groq", "ollama":
		return func(apiKey string) Client { return NewOpenAIClient(apiKey, endpoint) }, nil
	case ProviderAnthropic:
		return func(apiKey string) Client { return NewAnthropicClient(apiKey, endpoint) }, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}

// ModelFor returns the model a provider uses when none is configured.
func ModelFor(provider, model string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		return defaultGeminiModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	case ProviderLocal:
		return localModel
	default:
		return defaultOpenAIModel
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		role := strings.ToLower(strings.TrimSpace(messages[i].Role))
		if role == "user" || role == "" {
			return messages[i].Content
		}
	}
	return ""
}
