package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/auth"
)

type memoryAnalysisCache struct {
	entries map[uuid.UUID]ai.CachedAnalysis
}

func (m *memoryAnalysisCache) Get(userID uuid.UUID) (ai.CachedAnalysis, bool) {
	entry, ok := m.entries[userID]
	return entry, ok
}

func (m *memoryAnalysisCache) Set(userID uuid.UUID, entry ai.CachedAnalysis) {
	m.entries[userID] = entry
}

func (m *memoryAnalysisCache) Invalidate(userID uuid.UUID) {
	delete(m.entries, userID)
}

func latestAnalysis(t *testing.T, h *AIHandler, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(auth.ContextUserIDKey, userID)

	if err := h.Latest(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return rec
}

// TestToAttemptResponses checks that attempt outcomes are reported per engine.
func TestToAttemptResponses(t *testing.T) {
	attempts := []ai.Attempt{
		{Engine: ai.EngineGemini, Skipped: true},
		{Engine: ai.EngineOpenAI, Err: errors.New("status 500"), Duration: 1500 * time.Millisecond},
		{Engine: ai.EngineOnDevice, Duration: 3 * time.Millisecond},
	}

	responses := toAttemptResponses(attempts)
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}

	if !responses[0].Skipped || responses[0].Success {
		t.Fatalf("unexpected skipped attempt: %+v", responses[0])
	}
	if responses[1].Success || responses[1].Error != "status 500" || responses[1].DurationMS != 1500 {
		t.Fatalf("unexpected failed attempt: %+v", responses[1])
	}
	if !responses[2].Success || responses[2].Engine != ai.EngineOnDevice {
		t.Fatalf("unexpected on-device attempt: %+v", responses[2])
	}
}

// TestLatestAnalysisReplacedByFailedRun checks that a run without a result clears the previous one.
func TestLatestAnalysisReplacedByFailedRun(t *testing.T) {
	cache := &memoryAnalysisCache{entries: map[uuid.UUID]ai.CachedAnalysis{}}
	h := &AIHandler{Cache: cache}
	userID := uuid.New()
	other := uuid.New()

	success := ai.Report{
		Result: &ai.AnalysisResult{Summary: "Cancel one", Insights: []ai.Insight{}, TotalPotentialSavings: 120},
		Engine: ai.EngineGemini,
	}
	if createdAt := h.storeOutcome(userID, success, "EUR"); createdAt == nil {
		t.Fatalf("expected created_at for an accepted run")
	}
	h.storeOutcome(other, ai.Report{Result: &ai.AnalysisResult{Insights: []ai.Insight{}}, Engine: ai.EngineOnDevice}, "USD")

	rec := latestAnalysis(t, h, userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected json body, got %v", err)
	}
	if body.Engine != ai.EngineGemini || body.Currency != "EUR" || body.Result == nil || body.Result.Summary != "Cancel one" {
		t.Fatalf("unexpected cached analysis: %+v", body)
	}

	failed := ai.Report{Attempts: []ai.Attempt{{Engine: ai.EngineOnDevice, Err: errors.New("boom")}}}
	if createdAt := h.storeOutcome(userID, failed, "EUR"); createdAt != nil {
		t.Fatalf("expected no created_at for a failed run, got %v", createdAt)
	}

	if rec := latestAnalysis(t, h, userID); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after a failed run, got %d", rec.Code)
	}
	if rec := latestAnalysis(t, h, other); rec.Code != http.StatusOK {
		t.Fatalf("expected other user's analysis to survive, got %d", rec.Code)
	}
}
