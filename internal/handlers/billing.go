package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/billing"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/repository"
)

type BillingHandler struct {
	Subscriptions *repository.SubscriptionRepository
}

func NewBillingHandler(subs *repository.SubscriptionRepository) *BillingHandler {
	return &BillingHandler{Subscriptions: subs}
}

// PreviewRequest describes the state of an edit form.
// SubscriptionID is set when an existing record is being edited.
type PreviewRequest struct {
	SubscriptionID  *string `json:"subscription_id"`
	Name            string  `json:"name" validate:"max=200"`
	Frequency       string  `json:"frequency" validate:"required,frequency"`
	StartDate       string  `json:"start_date" validate:"required"`
	NextBillingDate *string `json:"next_billing_date"`
}

type PreviewResponse struct {
	NextBillingDate string    `json:"next_billing_date"`
	Override        bool      `json:"override"`
	ReminderAt      time.Time `json:"reminder_at"`
}

// Preview evaluates the billing date a form would save without storing anything.
func (h *BillingHandler) Preview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	var existing *models.Subscription
	if req.SubscriptionID != nil && strings.TrimSpace(*req.SubscriptionID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*req.SubscriptionID))
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
		existing = &sub
	}

	session, err := previewSession(req, existing)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(http.StatusOK, PreviewResponse{
		NextBillingDate: session.NextBilling().Format(dateLayout),
		Override:        session.Override(),
		ReminderAt:      billing.ReminderTime(session.NextBilling()),
	})
}

// previewSession replays the form edits in order: schedule, manual date, then name.
func previewSession(req PreviewRequest, existing *models.Subscription) (*billing.Session, error) {
	frequency, err := models.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}

	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}

	var session *billing.Session
	if existing != nil {
		session = billing.EditSession(*existing)
		if err := session.SetSchedule(frequency, start); err != nil {
			return nil, err
		}
	} else {
		session, err = billing.NewSession(frequency, start)
		if err != nil {
			return nil, err
		}
	}

	if req.NextBillingDate != nil && strings.TrimSpace(*req.NextBillingDate) != "" {
		next, err := parseDate(*req.NextBillingDate, "next_billing_date")
		if err != nil {
			return nil, err
		}
		session.SetNextBilling(next)
	}

	if err := session.SetName(req.Name); err != nil {
		return nil, err
	}

	return session, nil
}
