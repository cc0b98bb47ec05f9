package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/subscription-reaper/backend/internal/handlers"
)

func TestValidatorDomainTags(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	valid := handlers.SubscriptionRequest{
		Name:      "Netflix",
		Currency:  "usd",
		Frequency: "monthly",
		Category:  "entertainment",
		StartDate: "2024-01-01",
	}
	require.NoError(t, v.Validate(&valid))

	badFrequency := valid
	badFrequency.Frequency = "daily"
	require.Error(t, v.Validate(&badFrequency))

	badCategory := valid
	badCategory.Category = "Gaming"
	require.Error(t, v.Validate(&badCategory))

	badCurrency := valid
	badCurrency.Currency = "US"
	require.Error(t, v.Validate(&badCurrency))

	noCategory := valid
	noCategory.Category = ""
	require.NoError(t, v.Validate(&noCategory))
}

func TestValidatorSettingsTags(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	require.NoError(t, v.Validate(&handlers.SettingsRequest{DefaultCurrency: "eur", Country: "uk"}))
	require.Error(t, v.Validate(&handlers.SettingsRequest{DefaultCurrency: "CHF", Country: "US"}))
	require.Error(t, v.Validate(&handlers.SettingsRequest{DefaultCurrency: "USD", Country: "FR"}))
}
