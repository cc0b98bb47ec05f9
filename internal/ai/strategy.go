package ai

import (
	"context"
	"strings"
	"time"
)

// Strategy is one way of producing an analysis.
type Strategy interface {
	Engine() Engine
	Attempt(ctx context.Context, input AnalysisInput) (*AnalysisResult, Attempt)
}

// PromptStrategy sends a prompt to a client and parses the reply strictly.
type PromptStrategy struct {
	engine Engine
	prompt func(AnalysisInput) string
	client func(AnalysisInput) (Client, error)
}

// NewPrimaryStrategy uses the detailed prompt with a user key, or serverKey when the user has none.
func NewPrimaryStrategy(engine Engine, serverKey string, factory Factory) *PromptStrategy {
	return &PromptStrategy{
		engine: engine,
		prompt: FullPrompt,
		client: func(input AnalysisInput) (Client, error) {
			key := strings.TrimSpace(input.APIKey)
			if key == "" {
				key = strings.TrimSpace(serverKey)
			}
			if key == "" || factory == nil {
				return nil, ErrNotConfigured
			}
			return factory(key), nil
		},
	}
}

// NewFallbackStrategy uses the neutral prompt against an always available client.
func NewFallbackStrategy(engine Engine, client Client) *PromptStrategy {
	return &PromptStrategy{
		engine: engine,
		prompt: NeutralPrompt,
		client: func(AnalysisInput) (Client, error) {
			if client == nil {
				return nil, ErrNotConfigured
			}
			return client, nil
		},
	}
}

func (s *PromptStrategy) Engine() Engine {
	return s.engine
}

func (s *PromptStrategy) Attempt(ctx context.Context, input AnalysisInput) (*AnalysisResult, Attempt) {
	attempt := Attempt{Engine: s.engine}

	client, err := s.client(input)
	if err != nil {
		attempt.Err = err
		attempt.Skipped = true
		return nil, attempt
	}

	attempt.Prompt = s.prompt(input)
	started := time.Now()
	content, raw, err := client.Chat(ctx, []Message{{Role: "user", Content: attempt.Prompt}})
	attempt.Duration = time.Since(started)
	attempt.Content = content
	attempt.Raw = raw
	if err != nil {
		attempt.Err = err
		return nil, attempt
	}

	result, err := ParseAnalysis(content)
	if err != nil {
		attempt.Err = err
		return nil, attempt
	}

	return result, attempt
}
