package ai

import (
	"strings"
	"time"

	"example.com/subscription-reaper/backend/internal/models"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
)

// Engine labels the engine that produced a result.
type Engine string

const (
	EngineNone      Engine = ""
	EngineGemini    Engine = "Gemini 3 Flash"
	EngineOpenAI    Engine = "OpenAI Compatible"
	EngineAnthropic Engine = "Claude"
	EngineOnDevice  Engine = "Foundation Model (On-Device)"
)

// EngineFor returns the label of a primary provider.
func EngineFor(provider string) Engine {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		return EngineGemini
	case ProviderAnthropic:
		return EngineAnthropic
	case ProviderLocal:
		return EngineOnDevice
	default:
		return EngineOpenAI
	}
}

type InsightType string

const (
	InsightOptimization InsightType = "Optimization"
	InsightDuplicate    InsightType = "Duplicate"
	InsightHighCost     InsightType = "HighCost"
	InsightLifestyle    InsightType = "Lifestyle"
)

// MaxInsights bounds the insights kept from one analysis.
const MaxInsights = 10

type Insight struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	PotentialSavings float64     `json:"potentialSavings"`
	Priority         float64     `json:"priority"`
	Type             InsightType `json:"type"`
}

type AnalysisResult struct {
	Insights              []Insight `json:"insights"`
	Summary               string    `json:"summary"`
	TotalPotentialSavings float64   `json:"totalPotentialSavings"`
}

// AnalysisInput is everything one analysis run needs.
type AnalysisInput struct {
	Subscriptions   []models.Subscription
	DefaultCurrency string
	Country         string
	// APIKey is the user's own primary engine key; empty falls back to the server key.
	APIKey string
}

// Attempt records one engine call for the request log.
type Attempt struct {
	Engine   Engine
	Prompt   string
	Content  string
	Raw      []byte
	Err      error
	Skipped  bool
	Duration time.Duration
}

// Report is the outcome of an analysis run.
type Report struct {
	Result   *AnalysisResult
	Engine   Engine
	Attempts []Attempt
}

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
