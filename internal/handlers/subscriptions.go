package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/billing"
	"example.com/subscription-reaper/backend/internal/catalog"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/notifications"
	"example.com/subscription-reaper/backend/internal/repository"
	"example.com/subscription-reaper/backend/internal/spending"
)

const (
	dateLayout  = "2006-01-02"
	defaultIcon = "creditcard"
)

var (
	errUnknownSource  = errors.New("unknown source_id")
	errBudgetNegative = errors.New("budgets must not be negative")
)

type SubscriptionHandler struct {
	Subscriptions *repository.SubscriptionRepository
	Catalog       *catalog.Catalog
	Reminders     *notifications.Planner
	Notifier      *notifications.Hub
	Analyses      *ai.ResultCache
}

func NewSubscriptionHandler(subs *repository.SubscriptionRepository, providers *catalog.Catalog, reminders *notifications.Planner, notifier *notifications.Hub, analyses *ai.ResultCache) *SubscriptionHandler {
	return &SubscriptionHandler{
		Subscriptions: subs,
		Catalog:       providers,
		Reminders:     reminders,
		Notifier:      notifier,
		Analyses:      analyses,
	}
}

type SubscriptionRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" validate:"required,currency_code"`
	Frequency       string          `json:"frequency" validate:"required,frequency"`
	Category        string          `json:"category" validate:"omitempty,category"`
	Icon            *string         `json:"icon" validate:"omitempty,max=64"`
	LogoURL         *string         `json:"logo_url" validate:"omitempty,url,max=500"`
	FullServiceName *string         `json:"full_service_name" validate:"omitempty,max=200"`
	SourceID        *string         `json:"source_id" validate:"omitempty,max=64"`
	StartDate       string          `json:"start_date" validate:"required"`
	NextBillingDate *string         `json:"next_billing_date"`
	Notes           *string         `json:"notes" validate:"omitempty,max=2000"`
}

type SubscriptionResponse struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	Frequency       models.Frequency `json:"frequency"`
	Category        models.Category  `json:"category"`
	Icon            string           `json:"icon"`
	LogoURL         *string          `json:"logo_url,omitempty"`
	FullServiceName *string          `json:"full_service_name,omitempty"`
	SourceID        *string          `json:"source_id,omitempty"`
	StartDate       string           `json:"start_date"`
	NextBillingDate string           `json:"next_billing_date"`
	ReminderAt      time.Time        `json:"reminder_at"`
	MonthlyCost     decimal.Decimal  `json:"monthly_cost"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// List returns the user's subscriptions, soonest renewal first.
func (h *SubscriptionHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	filter := repository.SubscriptionFilter{Query: strings.TrimSpace(c.QueryParam("q"))}
	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			return badRequest(c, "invalid category")
		}
		filter.Category = &category
	}

	subs, err := h.Subscriptions.List(c.Request().Context(), userID, filter)
	if err != nil {
		return serverError(c)
	}

	response := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		response = append(response, toSubscriptionResponse(sub))
	}

	return c.JSON(http.StatusOK, map[string][]SubscriptionResponse{"subscriptions": response})
}

// Create stores a subscription and arms its renewal reminder.
func (h *SubscriptionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	sub, err := buildSubscription(req, nil)
	if err != nil {
		return badRequest(c, err.Error())
	}
	sub.UserID = userID

	if err := enrichFromCatalog(h.Catalog, &sub); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Subscriptions.Create(c.Request().Context(), sub)
	if err != nil {
		return serverError(c)
	}

	h.afterChange(c.Request().Context(), created, "created")
	return c.JSON(http.StatusCreated, toSubscriptionResponse(created))
}

func (h *SubscriptionHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid subscription id")
	}

	sub, err := h.Subscriptions.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "subscription not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

// Update replaces a subscription. The stored billing date is kept unless a new one is sent.
func (h *SubscriptionHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid subscription id")
	}

	var req SubscriptionRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	existing, err := h.Subscriptions.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "subscription not found")
		}
		return serverError(c)
	}

	sub, err := buildSubscription(req, &existing)
	if err != nil {
		return badRequest(c, err.Error())
	}
	sub.ID = existing.ID
	sub.UserID = userID

	if err := enrichFromCatalog(h.Catalog, &sub); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.Subscriptions.Update(c.Request().Context(), sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "subscription not found")
		}
		return serverError(c)
	}

	h.afterChange(c.Request().Context(), updated, "updated")
	return c.JSON(http.StatusOK, toSubscriptionResponse(updated))
}

// Delete removes a subscription together with its pending reminder.
func (h *SubscriptionHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid subscription id")
	}

	if err := h.Subscriptions.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "subscription not found")
		}
		return serverError(c)
	}

	if h.Reminders != nil {
		if err := h.Reminders.Cancel(c.Request().Context(), id); err != nil {
			slog.Warn("failed to cancel renewal reminder", slog.String("subscription_id", id.String()), slog.String("error", err.Error()))
		}
	}
	if h.Analyses != nil {
		h.Analyses.Invalidate(userID)
	}
	publishSubscriptionChange(h.Notifier, userID, id, "deleted")

	return c.NoContent(http.StatusNoContent)
}

func (h *SubscriptionHandler) afterChange(ctx context.Context, sub models.Subscription, action string) {
	if h.Reminders != nil {
		if _, err := h.Reminders.Plan(ctx, sub); err != nil {
			slog.Warn("failed to schedule renewal reminder", slog.String("subscription_id", sub.ID.String()), slog.String("error", err.Error()))
		}
	}
	if h.Analyses != nil {
		h.Analyses.Invalidate(sub.UserID)
	}
	publishSubscriptionChange(h.Notifier, sub.UserID, sub.ID, action)
}

// buildSubscription validates a request and derives the next billing date.
// existing is nil for new records.
func buildSubscription(req SubscriptionRequest, existing *models.Subscription) (models.Subscription, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Subscription{}, errors.New("name is required")
	}

	if req.Amount.IsNegative() {
		return models.Subscription{}, errors.New("amount must not be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !models.IsCurrencyCode(currency) {
		return models.Subscription{}, errors.New("invalid currency")
	}

	frequency, err := models.ParseFrequency(req.Frequency)
	if err != nil {
		return models.Subscription{}, err
	}

	var category models.Category
	if strings.TrimSpace(req.Category) != "" {
		category, err = models.ParseCategory(req.Category)
		if err != nil {
			return models.Subscription{}, err
		}
	}

	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return models.Subscription{}, err
	}

	var session *billing.Session
	if existing != nil {
		session = billing.EditSession(*existing)
		if err := session.SetSchedule(frequency, start); err != nil {
			return models.Subscription{}, err
		}
	} else {
		session, err = billing.NewSession(frequency, start)
		if err != nil {
			return models.Subscription{}, err
		}
	}

	if req.NextBillingDate != nil && strings.TrimSpace(*req.NextBillingDate) != "" {
		next, err := parseDate(*req.NextBillingDate, "next_billing_date")
		if err != nil {
			return models.Subscription{}, err
		}
		session.SetNextBilling(next)
	}

	sub := models.Subscription{
		Name:            name,
		Amount:          req.Amount.Round(2),
		Currency:        currency,
		Frequency:       frequency,
		Category:        category,
		LogoURL:         trimOptional(req.LogoURL),
		FullServiceName: trimOptional(req.FullServiceName),
		SourceID:        trimOptional(req.SourceID),
		StartDate:       start,
		NextBillingDate: session.NextBilling(),
		Notes:           trimOptional(req.Notes),
	}
	if icon := trimOptional(req.Icon); icon != nil {
		sub.Icon = *icon
	}

	return sub, nil
}

// enrichFromCatalog fills presentation fields the client left empty from the provider entry.
func enrichFromCatalog(providers *catalog.Catalog, sub *models.Subscription) error {
	if sub.SourceID != nil && providers != nil {
		entry, ok := providers.GetByID(providers.Resolve(*sub.SourceID))
		if !ok {
			return errUnknownSource
		}

		id := entry.ID
		sub.SourceID = &id
		if sub.Icon == "" {
			sub.Icon = entry.DefaultIcon
		}
		if sub.LogoURL == nil && entry.LogoURL != "" {
			logo := entry.LogoURL
			sub.LogoURL = &logo
		}
		if sub.FullServiceName == nil {
			name := entry.Name
			sub.FullServiceName = &name
		}
		if sub.Category == "" {
			sub.Category = entry.Category
		}
	}

	if sub.Icon == "" {
		sub.Icon = defaultIcon
	}
	if sub.Category == "" {
		sub.Category = models.CategoryOther
	}
	return nil
}

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.New("invalid " + field + " format")
	}
	return parsed, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toSubscriptionResponse(sub models.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:              sub.ID,
		Name:            sub.Name,
		Amount:          sub.Amount,
		Currency:        sub.Currency,
		Frequency:       sub.Frequency,
		Category:        sub.Category,
		Icon:            sub.Icon,
		LogoURL:         sub.LogoURL,
		FullServiceName: sub.FullServiceName,
		SourceID:        sub.SourceID,
		StartDate:       sub.StartDate.Format(dateLayout),
		NextBillingDate: sub.NextBillingDate.Format(dateLayout),
		ReminderAt:      billing.ReminderTime(sub.NextBillingDate),
		MonthlyCost:     spending.MonthlyCost(sub.Amount, sub.Frequency).Round(2),
		Notes:           sub.Notes,
		CreatedAt:       sub.CreatedAt,
		UpdatedAt:       sub.UpdatedAt,
	}
}
