package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"example.com/subscription-reaper/backend/internal/models"
)

type stubClient struct {
	content string
	err     error
	calls   int
	prompts []string
}

func (s *stubClient) Chat(_ context.Context, messages []Message) (string, []byte, error) {
	s.calls++
	s.prompts = append(s.prompts, lastUserMessage(messages))
	if s.err != nil {
		return "", nil, s.err
	}
	return s.content, []byte(s.content), nil
}

const validAnalysis = `{"insights":[{"title":"Netflix","description":"Move to the ad tier","potentialSavings":120,"priority":0.8,"type":"HighCost"}],"summary":"One idea","totalPotentialSavings":120}`

func subscription(name, amount string, frequency models.Frequency, category models.Category) models.Subscription {
	return models.Subscription{
		Name:      name,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "USD",
		Frequency: frequency,
		Category:  category,
	}
}

func sampleInput() AnalysisInput {
	return AnalysisInput{
		Subscriptions: []models.Subscription{
			subscription("Netflix", "15.49", models.FrequencyMonthly, models.CategoryEntertainment),
			subscription("Notion", "96", models.FrequencyYearly, models.CategoryProductivity),
		},
		DefaultCurrency: "USD",
		Country:         "US",
	}
}

func factoryFor(client Client, keys *[]string) Factory {
	return func(apiKey string) Client {
		*keys = append(*keys, apiKey)
		return client
	}
}

func TestAnalyzeEmptyInputCallsNoEngine(t *testing.T) {
	t.Parallel()
	primary := &stubClient{content: validAnalysis}
	fallback := &stubClient{content: validAnalysis}
	var keys []string

	service := NewService(nil,
		NewPrimaryStrategy(EngineGemini, "server-key", factoryFor(primary, &keys)),
		NewFallbackStrategy(EngineOnDevice, fallback),
	)

	report := service.Analyze(context.Background(), AnalysisInput{DefaultCurrency: "USD", Country: "US"})
	require.Nil(t, report.Result)
	require.Empty(t, report.Attempts)
	require.Zero(t, primary.calls)
	require.Zero(t, fallback.calls)
	require.Empty(t, keys)
	require.Equal(t, EngineNone, service.ActiveEngine())
}

func TestAnalyzeFallsBackOnMalformedJSON(t *testing.T) {
	t.Parallel()
	primary := &stubClient{content: "not json"}
	var keys []string

	service := NewService(nil,
		NewPrimaryStrategy(EngineGemini, "server-key", factoryFor(primary, &keys)),
		NewFallbackStrategy(EngineOnDevice, NewLocalClient(nil)),
	)

	report := service.Analyze(context.Background(), sampleInput())
	require.NotNil(t, report.Result)
	require.Equal(t, EngineOnDevice, report.Engine)
	require.Equal(t, EngineOnDevice, service.ActiveEngine())
	require.Len(t, report.Attempts, 2)
	require.ErrorIs(t, report.Attempts[0].Err, ErrInvalidResponse)
	require.NoError(t, report.Attempts[1].Err)
	require.Equal(t, 1, primary.calls)
}

func TestAnalyzeWithoutKeySkipsPrimary(t *testing.T) {
	t.Parallel()
	primary := &stubClient{content: validAnalysis}
	fallback := &stubClient{content: validAnalysis}
	var keys []string

	service := NewService(nil,
		NewPrimaryStrategy(EngineGemini, "", factoryFor(primary, &keys)),
		NewFallbackStrategy(EngineOnDevice, fallback),
	)

	report := service.Analyze(context.Background(), sampleInput())
	require.NotNil(t, report.Result)
	require.Equal(t, EngineOnDevice, report.Engine)
	require.Zero(t, primary.calls)
	require.Empty(t, keys)
	require.True(t, report.Attempts[0].Skipped)
	require.ErrorIs(t, report.Attempts[0].Err, ErrNotConfigured)
	require.Contains(t, fallback.prompts[0], "Here is a list of subscription data: Name: Netflix")
}

func TestAnalyzePrimaryAcceptedAndUserKeyWins(t *testing.T) {
	t.Parallel()
	primary := &stubClient{content: "```json\n" + validAnalysis + "\n```"}
	fallback := &stubClient{content: validAnalysis}
	var keys []string

	service := NewService(nil,
		NewPrimaryStrategy(EngineGemini, "server-key", factoryFor(primary, &keys)),
		NewFallbackStrategy(EngineOnDevice, fallback),
	)

	input := sampleInput()
	input.APIKey = "user-key"
	report := service.Analyze(context.Background(), input)

	require.Equal(t, EngineGemini, report.Engine)
	require.Equal(t, EngineGemini, service.ActiveEngine())
	require.Equal(t, []string{"user-key"}, keys)
	require.Zero(t, fallback.calls)
	require.Len(t, report.Result.Insights, 1)
	require.Equal(t, InsightHighCost, report.Result.Insights[0].Type)
	require.Contains(t, primary.prompts[0], "[START]\nName: Netflix, Amount: 15.49 USD, Frequency: Monthly, Category: Entertainment")
}

func TestAnalyzeAllEnginesFail(t *testing.T) {
	t.Parallel()
	primary := &stubClient{err: errors.New("network down")}
	fallback := &stubClient{content: `{"insights": []}`}
	var keys []string

	service := NewService(nil,
		NewPrimaryStrategy(EngineGemini, "server-key", factoryFor(primary, &keys)),
		NewFallbackStrategy(EngineOnDevice, fallback),
	)

	report := service.Analyze(context.Background(), sampleInput())
	require.Nil(t, report.Result)
	require.Equal(t, EngineNone, report.Engine)
	require.Len(t, report.Attempts, 2)
	require.Equal(t, EngineNone, service.ActiveEngine())
}

func TestAnalyzeKeepsLastAcceptedEngine(t *testing.T) {
	t.Parallel()
	primary := &stubClient{content: validAnalysis}
	var keys []string

	service := NewService(nil,
		NewPrimaryStrategy(EngineGemini, "server-key", factoryFor(primary, &keys)),
		NewFallbackStrategy(EngineOnDevice, &stubClient{err: errors.New("offline")}),
	)
	service.Analyze(context.Background(), sampleInput())
	require.Equal(t, EngineGemini, service.ActiveEngine())

	primary.err = errors.New("quota exceeded")
	report := service.Analyze(context.Background(), sampleInput())
	require.Nil(t, report.Result)
	require.Equal(t, EngineGemini, service.ActiveEngine())
}

func TestAnalyzeStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	fallback := &stubClient{content: validAnalysis}
	service := NewService(nil, NewFallbackStrategy(EngineOnDevice, fallback))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := service.Analyze(ctx, sampleInput())
	require.Nil(t, report.Result)
	require.Zero(t, fallback.calls)
}

func TestMarketContext(t *testing.T) {
	t.Parallel()
	us := MarketContext("us")
	require.Contains(t, us, "Recent Trends (Late 2025/2026):")
	require.Contains(t, us, "United States (US):")
	require.Contains(t, MarketContext("JP"), "Japan (JP):")

	other := MarketContext("BR")
	require.Contains(t, other, "Global pricing trends suggest bundle savings of ~15-20% compared to individual plans.")
	require.NotContains(t, other, "United States")
}

func TestFullPromptSections(t *testing.T) {
	t.Parallel()
	input := sampleInput()
	input.Country = "UK"
	input.DefaultCurrency = "GBP"

	prompt := FullPrompt(input)
	require.Contains(t, prompt, "[START]\nName: Netflix, Amount: 15.49 USD, Frequency: Monthly, Category: Entertainment\nName: Notion, Amount: 96 USD, Frequency: Yearly, Category: Productivity\n[END]")
	require.Contains(t, prompt, "MARKET CONTEXT FOR UK:")
	require.Contains(t, prompt, "United Kingdom (UK):")
	require.Contains(t, prompt, "NO HALLUCINATIONS")
	require.Contains(t, prompt, "Report all amounts in GBP.")
}

func TestEngineFor(t *testing.T) {
	t.Parallel()
	require.Equal(t, EngineGemini, EngineFor("Gemini"))
	require.Equal(t, EngineAnthropic, EngineFor("anthropic"))
	require.Equal(t, EngineOpenAI, EngineFor("groq"))
}

func TestNewFactory(t *testing.T) {
	t.Parallel()
	for _, provider := range []string{"gemini", "openai", "groq", "anthropic"} {
		factory, err := NewFactory(provider, Endpoint{})
		require.NoError(t, err)
		require.NotNil(t, factory("key"))
	}

	_, err := NewFactory("mystery", Endpoint{})
	require.Error(t, err)
}

func TestModelFor(t *testing.T) {
	t.Parallel()
	require.Equal(t, "custom", ModelFor("gemini", "custom"))
	require.Equal(t, defaultGeminiModel, ModelFor("Gemini", ""))
	require.Equal(t, defaultAnthropicModel, ModelFor("anthropic", " "))
	require.Equal(t, defaultOpenAIModel, ModelFor("ollama", ""))
	require.Equal(t, localModel, ModelFor(ProviderLocal, ""))
}
