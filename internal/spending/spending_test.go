package spending

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"example.com/subscription-reaper/backend/internal/currency"
	"example.com/subscription-reaper/backend/internal/models"
)

func sub(name string, amount string, code string, frequency models.Frequency, category models.Category) models.Subscription {
	return models.Subscription{
		Name:      name,
		Amount:    decimal.RequireFromString(amount),
		Currency:  code,
		Frequency: frequency,
		Category:  category,
	}
}

func TestMonthlyCost(t *testing.T) {
	t.Parallel()
	require.True(t, MonthlyCost(decimal.NewFromInt(10), models.FrequencyMonthly).Equal(decimal.NewFromInt(10)))
	require.True(t, MonthlyCost(decimal.NewFromInt(120), models.FrequencyYearly).Equal(decimal.NewFromInt(10)))
	require.True(t, MonthlyCost(decimal.NewFromInt(3), models.FrequencyWeekly).Equal(decimal.NewFromInt(13)))
}

func TestSummarizeConvertsAndSorts(t *testing.T) {
	t.Parallel()
	converter := currency.NewConverter(nil, nil)

	subs := []models.Subscription{
		sub("Netflix", "15.49", "USD", models.FrequencyMonthly, models.CategoryEntertainment),
		sub("Notion", "96", "USD", models.FrequencyYearly, models.CategoryProductivity),
		sub("Spotify", "9.20", "EUR", models.FrequencyMonthly, models.CategoryEntertainment),
	}

	summary := Summarize(subs, converter, "USD")
	require.Equal(t, 3, summary.Count)
	require.Equal(t, "25.49", summary.ByCategory[0].Monthly.StringFixed(2))
	require.Equal(t, models.CategoryEntertainment, summary.ByCategory[0].Category)
	require.Equal(t, 2, summary.ByCategory[0].Count)
	require.Equal(t, models.CategoryProductivity, summary.ByCategory[1].Category)
	require.Equal(t, "33.49", summary.MonthlyTotal.StringFixed(2))
	require.Equal(t, "401.88", summary.YearlyTotal.StringFixed(2))
	require.Equal(t, "Netflix", summary.MostExpensive.Name)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()
	summary := Summarize(nil, nil, "EUR")
	require.Zero(t, summary.Count)
	require.True(t, summary.MonthlyTotal.IsZero())
	require.Empty(t, summary.ByCategory)
	require.Nil(t, summary.MostExpensive)
}

func TestBudget(t *testing.T) {
	t.Parallel()
	settings := models.DefaultSettings(uuid.Nil)
	settings.BudgetEnabled = true

	summary := Summarize([]models.Subscription{
		sub("Max", "60", "USD", models.FrequencyMonthly, models.CategoryEntertainment),
	}, nil, "USD")

	status := Budget(settings, summary)
	require.True(t, status.Enabled)
	require.True(t, status.Monthly.Exceeded)
	require.Equal(t, "-10", status.Monthly.Remaining.String())
	require.InDelta(t, 1.2, status.Monthly.Usage, 0.0001)
	require.True(t, status.Annual.Exceeded)

	settings.MonthlyBudget = decimal.Zero
	status = Budget(settings, summary)
	require.Zero(t, status.Monthly.Usage)
}
