package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/spending"
)

const timeLayout = time.RFC3339

// ExportJSON downloads every subscription of the user as a JSON file.
func (h *SubscriptionHandler) ExportJSON(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	subs, err := h.Subscriptions.ListAll(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		response = append(response, toSubscriptionResponse(sub))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+exportFilename(".json")+"\"")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"exported_at":   time.Now().UTC().Format(timeLayout),
		"subscriptions": response,
	})
}

// ExportCSV downloads every subscription of the user as CSV, one row per subscription.
func (h *SubscriptionHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	subs, err := h.Subscriptions.ListAll(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeSubscriptionsCSV(writer, subs); err != nil {
		return serverError(c)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+exportFilename(".csv")+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeSubscriptionsCSV(writer *csv.Writer, subs []models.Subscription) error {
	header := []string{
		"id",
		"name",
		"amount",
		"currency",
		"frequency",
		"category",
		"start_date",
		"next_billing_date",
		"monthly_cost",
		"full_service_name",
		"source_id",
		"notes",
		"created_at",
		"updated_at",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sub := range subs {
		record := []string{
			sub.ID.String(),
			sub.Name,
			sub.Amount.StringFixed(2),
			sub.Currency,
			string(sub.Frequency),
			string(sub.Category),
			sub.StartDate.Format(dateLayout),
			sub.NextBillingDate.Format(dateLayout),
			spending.MonthlyCost(sub.Amount, sub.Frequency).StringFixed(2),
			formatOptional(sub.FullServiceName),
			formatOptional(sub.SourceID),
			formatOptional(sub.Notes),
			sub.CreatedAt.Format(timeLayout),
			sub.UpdatedAt.Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func exportFilename(ext string) string {
	return "subscriptions-" + time.Now().UTC().Format("20060102") + ext
}

func formatOptional(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
