package spending

import (
	"sort"

	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/models"
)

// Converter converts amounts between currency codes.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) decimal.Decimal
}

var (
	twelve   = decimal.NewFromInt(12)
	fiftyTwo = decimal.NewFromInt(52)
)

const places = 2

// CategoryTotal is the monthly cost of one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Monthly  decimal.Decimal `json:"monthly"`
	Count    int             `json:"count"`
}

// Summary aggregates a user's subscriptions in a single currency.
type Summary struct {
	Currency      string               `json:"currency"`
	Count         int                  `json:"count"`
	MonthlyTotal  decimal.Decimal      `json:"monthly_total"`
	YearlyTotal   decimal.Decimal      `json:"yearly_total"`
	ByCategory    []CategoryTotal      `json:"by_category"`
	MostExpensive *models.Subscription `json:"most_expensive,omitempty"`
}

// MonthlyCost normalizes an amount to one month of its frequency.
func MonthlyCost(amount decimal.Decimal, frequency models.Frequency) decimal.Decimal {
	switch frequency {
	case models.FrequencyYearly:
		return amount.Div(twelve)
	case models.FrequencyWeekly:
		return amount.Mul(fiftyTwo).Div(twelve)
	default:
		return amount
	}
}

// Summarize converts every subscription into currency and totals it.
func Summarize(subs []models.Subscription, converter Converter, currency string) Summary {
	summary := Summary{
		Currency:     currency,
		Count:        len(subs),
		MonthlyTotal: decimal.Zero,
		ByCategory:   make([]CategoryTotal, 0),
	}

	byCategory := make(map[models.Category]*CategoryTotal)
	var mostExpensive decimal.Decimal

	for i := range subs {
		sub := subs[i]
		monthly := MonthlyCost(convert(converter, sub.Amount, sub.Currency, currency), sub.Frequency)
		summary.MonthlyTotal = summary.MonthlyTotal.Add(monthly)

		total, ok := byCategory[sub.Category]
		if !ok {
			total = &CategoryTotal{Category: sub.Category, Monthly: decimal.Zero}
			byCategory[sub.Category] = total
		}
		total.Monthly = total.Monthly.Add(monthly)
		total.Count++

		if summary.MostExpensive == nil || monthly.GreaterThan(mostExpensive) {
			mostExpensive = monthly
			summary.MostExpensive = &subs[i]
		}
	}

	for _, total := range byCategory {
		total.Monthly = total.Monthly.Round(places)
		summary.ByCategory = append(summary.ByCategory, *total)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if !a.Monthly.Equal(b.Monthly) {
			return a.Monthly.GreaterThan(b.Monthly)
		}
		return a.Category < b.Category
	})

	summary.YearlyTotal = summary.MonthlyTotal.Mul(twelve).Round(places)
	summary.MonthlyTotal = summary.MonthlyTotal.Round(places)
	return summary
}

func convert(converter Converter, amount decimal.Decimal, from, to string) decimal.Decimal {
	if converter == nil {
		return amount
	}
	return converter.Convert(amount, from, to)
}
