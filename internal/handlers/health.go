package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RatesClock reports when exchange rates were last refreshed.
type RatesClock interface {
	LastUpdated() time.Time
}

type HealthHandler struct {
	DB    Pinger
	Rates RatesClock
}

func NewHealthHandler(db Pinger, rates RatesClock) *HealthHandler {
	return &HealthHandler{DB: db, Rates: rates}
}

type HealthResponse struct {
	Status         string     `json:"status"`
	Database       string     `json:"database"`
	RatesUpdatedAt *time.Time `json:"rates_updated_at,omitempty"`
	RatesStale     bool       `json:"rates_stale"`
}

// Health answers 200 while the database is reachable and 503 otherwise.
// Rates that never loaded are reported as stale but do not fail the check;
// conversion keeps working on the fallback table.
func (h *HealthHandler) Health(c echo.Context) error {
	response := HealthResponse{Status: "ok", Database: "ok", RatesStale: true}

	if h.Rates != nil {
		if updated := h.Rates.LastUpdated(); !updated.IsZero() {
			response.RatesUpdatedAt = &updated
			response.RatesStale = false
		}
	}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			response.Status = "degraded"
			response.Database = "unavailable"
			return c.JSON(http.StatusServiceUnavailable, response)
		}
	}

	return c.JSON(http.StatusOK, response)
}
