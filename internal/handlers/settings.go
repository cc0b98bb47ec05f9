package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/repository"
)

type SettingsHandler struct {
	Settings *repository.SettingsRepository
	Analyses *ai.ResultCache
}

func NewSettingsHandler(settings *repository.SettingsRepository, analyses *ai.ResultCache) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Analyses: analyses}
}

// SettingsRequest replaces every setting. PrimaryAPIKey is left alone when absent and cleared when empty.
type SettingsRequest struct {
	DefaultCurrency string          `json:"default_currency" validate:"required,default_currency"`
	Country         string          `json:"country" validate:"required,country_code"`
	PrimaryAPIKey   *string         `json:"primary_api_key" validate:"omitempty,max=256"`
	BudgetEnabled   bool            `json:"budget_enabled"`
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
	AnnualBudget    decimal.Decimal `json:"annual_budget"`
}

type SettingsResponse struct {
	DefaultCurrency string          `json:"default_currency"`
	Country         string          `json:"country"`
	HasAPIKey       bool            `json:"has_api_key"`
	BudgetEnabled   bool            `json:"budget_enabled"`
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
	AnnualBudget    decimal.Decimal `json:"annual_budget"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	Currencies      []string        `json:"currencies"`
	Countries       []string        `json:"countries"`
}

func (h *SettingsHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	settings, err := h.Settings.Get(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// Update saves the settings. The stored key is never echoed back.
func (h *SettingsHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	settings, err := buildSettings(req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	settings.UserID = userID

	ctx := c.Request().Context()
	if req.PrimaryAPIKey != nil {
		key := strings.TrimSpace(*req.PrimaryAPIKey)
		if err := h.Settings.SetPrimaryAPIKey(ctx, userID, &key); err != nil {
			return serverError(c)
		}
	}

	saved, err := h.Settings.Save(ctx, settings)
	if err != nil {
		return serverError(c)
	}

	if h.Analyses != nil {
		h.Analyses.Invalidate(userID)
	}

	return c.JSON(http.StatusOK, toSettingsResponse(saved))
}

func buildSettings(req SettingsRequest) (models.Settings, error) {
	currency, err := models.ParseCurrency(req.DefaultCurrency)
	if err != nil {
		return models.Settings{}, err
	}

	country, err := models.ParseCountry(req.Country)
	if err != nil {
		return models.Settings{}, err
	}

	if req.MonthlyBudget.IsNegative() || req.AnnualBudget.IsNegative() {
		return models.Settings{}, errBudgetNegative
	}

	return models.Settings{
		DefaultCurrency: currency,
		Country:         country,
		BudgetEnabled:   req.BudgetEnabled,
		MonthlyBudget:   req.MonthlyBudget.Round(2),
		AnnualBudget:    req.AnnualBudget.Round(2),
	}, nil
}

func toSettingsResponse(settings models.Settings) SettingsResponse {
	response := SettingsResponse{
		DefaultCurrency: settings.DefaultCurrency,
		Country:         settings.Country,
		HasAPIKey:       settings.HasPrimaryAPIKey(),
		BudgetEnabled:   settings.BudgetEnabled,
		MonthlyBudget:   settings.MonthlyBudget,
		AnnualBudget:    settings.AnnualBudget,
		Currencies:      models.Currencies,
		Countries:       models.Countries,
	}
	if !settings.UpdatedAt.IsZero() {
		updatedAt := settings.UpdatedAt
		response.UpdatedAt = &updatedAt
	}
	return response
}
