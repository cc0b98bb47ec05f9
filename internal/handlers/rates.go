package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/currency"
	"example.com/subscription-reaper/backend/internal/models"
)

type RatesHandler struct {
	Converter *currency.Converter
}

func NewRatesHandler(converter *currency.Converter) *RatesHandler {
	return &RatesHandler{Converter: converter}
}

type RatesResponse struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt *time.Time         `json:"updated_at"`
	Refreshed *bool              `json:"refreshed,omitempty"`
}

type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
}

// Get returns the rate table in use and when it was last refreshed.
func (h *RatesHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toRatesResponse(h.Converter.Snapshot(), nil))
}

// Refresh fetches a new table. A failed fetch keeps the previous one.
// Connected streams learn about a new table through the converter's refresh callback.
func (h *RatesHandler) Refresh(c echo.Context) error {
	refreshed := h.Converter.Refresh(c.Request().Context())
	return c.JSON(http.StatusOK, toRatesResponse(h.Converter.Snapshot(), &refreshed))
}

func (h *RatesHandler) Convert(c echo.Context) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.QueryParam("amount")))
	if err != nil {
		return badRequest(c, "invalid amount")
	}
	if amount.IsNegative() {
		return badRequest(c, "amount must not be negative")
	}

	from := strings.ToUpper(strings.TrimSpace(c.QueryParam("from")))
	to := strings.ToUpper(strings.TrimSpace(c.QueryParam("to")))
	if !models.IsCurrencyCode(from) || !models.IsCurrencyCode(to) {
		return badRequest(c, "invalid currency")
	}

	return c.JSON(http.StatusOK, ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: h.Converter.Convert(amount, from, to).Round(2),
	})
}

func toRatesResponse(snapshot currency.Snapshot, refreshed *bool) RatesResponse {
	response := RatesResponse{Base: snapshot.Base, Rates: snapshot.Rates, Refreshed: refreshed}
	if !snapshot.UpdatedAt.IsZero() {
		updatedAt := snapshot.UpdatedAt
		response.UpdatedAt = &updatedAt
	}
	return response
}
