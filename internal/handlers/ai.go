package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/notifications"
	"example.com/subscription-reaper/backend/internal/repository"
)

const aiRequestAnalyzeSubscriptions = "analyze_subscriptions"

// AnalysisCache holds the latest analysis outcome of each user.
type AnalysisCache interface {
	Get(userID uuid.UUID) (ai.CachedAnalysis, bool)
	Set(userID uuid.UUID, entry ai.CachedAnalysis)
	Invalidate(userID uuid.UUID)
}

type AIHandler struct {
	Service       *ai.Service
	Subscriptions *repository.SubscriptionRepository
	Settings      *repository.SettingsRepository
	AIRepo        *repository.AIRepository
	Cache         AnalysisCache
	Notifier      *notifications.Hub
	Provider      string
	Model         string
}

func NewAIHandler(service *ai.Service, subs *repository.SubscriptionRepository, settings *repository.SettingsRepository, aiRepo *repository.AIRepository, cache AnalysisCache, notifier *notifications.Hub, provider, model string) *AIHandler {
	return &AIHandler{
		Service:       service,
		Subscriptions: subs,
		Settings:      settings,
		AIRepo:        aiRepo,
		Cache:         cache,
		Notifier:      notifier,
		Provider:      provider,
		Model:         model,
	}
}

type AttemptResponse struct {
	Engine     ai.Engine `json:"engine"`
	Success    bool      `json:"success"`
	Skipped    bool      `json:"skipped"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

type AnalysisResponse struct {
	Result    *ai.AnalysisResult `json:"result"`
	Engine    ai.Engine          `json:"engine"`
	Currency  string             `json:"currency"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
	Attempts  []AttemptResponse  `json:"attempts,omitempty"`
}

// Analyze runs the engines over every subscription of the user.
// A run where every engine failed still answers 200 with a null result.
func (h *AIHandler) Analyze(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	subs, err := h.Subscriptions.ListAll(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	settings, err := h.Settings.Get(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	input := ai.AnalysisInput{
		Subscriptions:   subs,
		DefaultCurrency: settings.DefaultCurrency,
		Country:         settings.Country,
	}
	if settings.PrimaryAPIKey != nil {
		input.APIKey = *settings.PrimaryAPIKey
	}

	report := h.Service.Analyze(ctx, input)
	for _, attempt := range report.Attempts {
		if attempt.Skipped {
			continue
		}
		h.logAttempt(ctx, userID, attempt)
	}

	response := AnalysisResponse{
		Result:    report.Result,
		Engine:    report.Engine,
		Currency:  settings.DefaultCurrency,
		CreatedAt: h.storeOutcome(userID, report, settings.DefaultCurrency),
		Attempts:  toAttemptResponses(report.Attempts),
	}

	if report.Result == nil {
		if len(subs) > 0 {
			slog.Warn("analysis produced no result", slog.String("user_id", userID.String()), slog.Int("attempts", len(report.Attempts)))
		}
		return c.JSON(http.StatusOK, response)
	}

	slog.Info("analysis generated",
		slog.String("user_id", userID.String()),
		slog.String("engine", string(report.Engine)),
		slog.Int("insights", len(report.Result.Insights)),
	)
	publishAnalysisReady(h.Notifier, userID, report.Engine, report.Result.TotalPotentialSavings)

	return c.JSON(http.StatusOK, response)
}

// Latest returns the cached result of the last run when it produced one.
func (h *AIHandler) Latest(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if h.Cache == nil {
		return notFound(c, "no analysis available")
	}

	cached, ok := h.Cache.Get(userID)
	if !ok {
		return notFound(c, "no analysis available")
	}

	result := cached.Result
	createdAt := cached.CreatedAt
	return c.JSON(http.StatusOK, AnalysisResponse{
		Result:    &result,
		Engine:    cached.Engine,
		Currency:  cached.Currency,
		CreatedAt: &createdAt,
	})
}

// storeOutcome replaces the cached analysis with the outcome of a run.
// A run without a result clears the previous one.
func (h *AIHandler) storeOutcome(userID uuid.UUID, report ai.Report, currency string) *time.Time {
	if h.Cache == nil {
		return nil
	}
	if report.Result == nil {
		h.Cache.Invalidate(userID)
		return nil
	}

	now := time.Now().UTC()
	h.Cache.Set(userID, ai.CachedAnalysis{
		Result:    *report.Result,
		Engine:    report.Engine,
		Currency:  currency,
		CreatedAt: now,
	})
	return &now
}

func (h *AIHandler) logAttempt(ctx context.Context, userID uuid.UUID, attempt ai.Attempt) {
	provider, model := h.Provider, ai.ModelFor(h.Provider, h.Model)
	if attempt.Engine == ai.EngineOnDevice {
		provider, model = ai.ProviderLocal, ai.ModelFor(ai.ProviderLocal, "")
	}

	log := repository.AIRequestLog{
		UserID:      userID,
		RequestType: aiRequestAnalyzeSubscriptions,
		Engine:      string(attempt.Engine),
		Provider:    provider,
		Model:       model,
		Prompt:      attempt.Prompt,
		RawResponse: string(attempt.Raw),
		Success:     attempt.Err == nil,
		DurationMS:  attempt.Duration.Milliseconds(),
	}

	if attempt.Err == nil {
		if result, err := ai.ParseAnalysis(attempt.Content); err == nil {
			log.ResponsePayload, _ = json.Marshal(result)
		}
	} else {
		errMsg := attempt.Err.Error()
		log.ErrorMessage = &errMsg
	}

	if err := h.AIRepo.LogRequest(ctx, log); err != nil {
		slog.Warn("failed to log ai request", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
	}
}

func toAttemptResponses(attempts []ai.Attempt) []AttemptResponse {
	out := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		item := AttemptResponse{
			Engine:     attempt.Engine,
			Success:    !attempt.Skipped && attempt.Err == nil,
			Skipped:    attempt.Skipped,
			DurationMS: attempt.Duration.Milliseconds(),
		}
		if attempt.Err != nil {
			item.Error = attempt.Err.Error()
		}
		out = append(out, item)
	}
	return out
}
