package models

import (
	"testing"

	"github.com/google/uuid"
)

// TestCountryFromAcceptLanguage checks region mapping and fallthrough order.
func TestCountryFromAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"en-GB,en;q=0.8":    "UK",
		"fr-CH, de;q=0.9":   "EU",
		"ja":                "JP",
		"hi-IN":             "IN",
		"en-CA,fr-CA;q=0.5": "CA",
	}

	for header, want := range cases {
		got, ok := CountryFromAcceptLanguage(header)
		if !ok || got != want {
			t.Fatalf("%q: expected %s, got %q (ok=%v)", header, want, got, ok)
		}
	}

	for _, header := range []string{"", "zh-CN", "pt-BR"} {
		if got, ok := CountryFromAcceptLanguage(header); ok {
			t.Fatalf("%q: expected no country, got %s", header, got)
		}
	}
}

// TestCurrencyForCountry checks the local currency table.
func TestCurrencyForCountry(t *testing.T) {
	if got := CurrencyForCountry("uk"); got != "GBP" {
		t.Fatalf("expected GBP, got %s", got)
	}
	if got := CurrencyForCountry("EU"); got != "EUR" {
		t.Fatalf("expected EUR, got %s", got)
	}
	if got := CurrencyForCountry("BR"); got != "USD" {
		t.Fatalf("expected USD fallback, got %s", got)
	}
}

// TestSettingsForLocale checks that registration defaults follow the browser locale.
func TestSettingsForLocale(t *testing.T) {
	userID := uuid.New()

	settings := SettingsForLocale(userID, "ja-JP")
	if settings.Country != "JP" || settings.DefaultCurrency != "JPY" || settings.UserID != userID {
		t.Fatalf("unexpected settings: %+v", settings)
	}

	settings = SettingsForLocale(userID, "pt-BR")
	if settings.Country != "US" || settings.DefaultCurrency != "USD" {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}
