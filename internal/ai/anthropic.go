package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicClient calls the Claude Messages API through the official SDK.
type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int
	client    anthropic.Client
}

func NewAnthropicClient(apiKey string, endpoint Endpoint) *AnthropicClient {
	apiKey = strings.TrimSpace(apiKey)
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(endpoint.BaseURL))
	}
	if endpoint.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(endpoint.Timeout))
	}

	model := endpoint.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicClient{
		apiKey:    apiKey,
		model:     model,
		maxTokens: resolveMaxTokens(endpoint.MaxTokens),
		client:    anthropic.NewClient(opts...),
	}
}

// Chat sends the conversation as a single Messages request.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if c.apiKey == "" {
		return "", nil, ErrNotConfigured
	}

	var system []anthropic.TextBlockParam
	turns := make([]anthropic.MessageParam, 0, len(messages))
	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: text})
		case "assistant":
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	if len(turns) == 0 {
		return "", nil, fmt.Errorf("anthropic: request has no user content")
	}

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		System:      system,
		Messages:    turns,
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", nil, fmt.Errorf("anthropic: %w", err)
	}

	raw := []byte(response.RawJSON())

	var builder strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", raw, ErrEmptyResponse
	}

	return builder.String(), raw, nil
}
