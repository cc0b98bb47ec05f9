package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/repository"
	"example.com/subscription-reaper/backend/internal/spending"
)

const defaultRenewalWindow = 7

type StatsHandler struct {
	Stats         *repository.StatsRepository
	Subscriptions *repository.SubscriptionRepository
	Settings      *repository.SettingsRepository
	Converter     spending.Converter
}

func NewStatsHandler(stats *repository.StatsRepository, subs *repository.SubscriptionRepository, settings *repository.SettingsRepository, converter spending.Converter) *StatsHandler {
	return &StatsHandler{
		Stats:         stats,
		Subscriptions: subs,
		Settings:      settings,
		Converter:     converter,
	}
}

type OverviewResponse struct {
	Currency      string                 `json:"currency"`
	Total         int                    `json:"total"`
	Weekly        int                    `json:"weekly"`
	Monthly       int                    `json:"monthly"`
	Yearly        int                    `json:"yearly"`
	Categories    int                    `json:"categories"`
	MonthlyTotal  decimal.Decimal        `json:"monthly_total"`
	YearlyTotal   decimal.Decimal        `json:"yearly_total"`
	MostExpensive *SubscriptionResponse  `json:"most_expensive,omitempty"`
	RenewalWindow int                    `json:"renewal_window_days"`
	RenewingSoon  []SubscriptionResponse `json:"renewing_soon"`
	NextRenewal   *string                `json:"next_renewal,omitempty"`
	TrackingSince *string                `json:"tracking_since,omitempty"`
}

type CategorySpendingResponse struct {
	Currency     string                   `json:"currency"`
	MonthlyTotal decimal.Decimal          `json:"monthly_total"`
	Categories   []spending.CategoryTotal `json:"categories"`
}

// Overview combines subscription counts, converted totals and upcoming renewals.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	window := defaultRenewalWindow
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid days")
		}
		if parsed > 90 {
			parsed = 90
		}
		window = parsed
	}

	ctx := c.Request().Context()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	overview, err := h.Stats.Overview(ctx, userID, today, window)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid days")
		}
		return serverError(c)
	}

	upcoming, err := h.Stats.UpcomingRenewals(ctx, userID, today, window)
	if err != nil {
		return serverError(c)
	}

	summary, _, err := h.summarize(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	response := OverviewResponse{
		Currency:      summary.Currency,
		Total:         overview.Total,
		Weekly:        overview.Weekly,
		Monthly:       overview.Monthly,
		Yearly:        overview.Yearly,
		Categories:    overview.Categories,
		MonthlyTotal:  summary.MonthlyTotal,
		YearlyTotal:   summary.YearlyTotal,
		RenewalWindow: window,
		RenewingSoon:  make([]SubscriptionResponse, 0, len(upcoming)),
		NextRenewal:   formatOptionalDate(overview.NextRenewal),
		TrackingSince: formatOptionalDate(overview.OldestStart),
	}
	if summary.MostExpensive != nil {
		mostExpensive := toSubscriptionResponse(*summary.MostExpensive)
		response.MostExpensive = &mostExpensive
	}
	for _, sub := range upcoming {
		response.RenewingSoon = append(response.RenewingSoon, toSubscriptionResponse(sub))
	}

	return c.JSON(http.StatusOK, response)
}

// SpendingByCategory returns monthly cost per category in the user's currency, largest first.
func (h *StatsHandler) SpendingByCategory(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	summary, _, err := h.summarize(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, CategorySpendingResponse{
		Currency:     summary.Currency,
		MonthlyTotal: summary.MonthlyTotal,
		Categories:   summary.ByCategory,
	})
}

// Budget compares converted totals with the user's monthly and annual limits.
func (h *StatsHandler) Budget(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	summary, settings, err := h.summarize(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, spending.Budget(settings, summary))
}

func (h *StatsHandler) summarize(ctx context.Context, userID uuid.UUID) (spending.Summary, models.Settings, error) {
	settings, err := h.Settings.Get(ctx, userID)
	if err != nil {
		return spending.Summary{}, settings, err
	}

	subs, err := h.Subscriptions.ListAll(ctx, userID)
	if err != nil {
		return spending.Summary{}, settings, err
	}

	return spending.Summarize(subs, h.Converter, settings.DefaultCurrency), settings, nil
}

func formatOptionalDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}
