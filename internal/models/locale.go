package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

var countryCurrencies = map[string]string{
	"US": "USD",
	"UK": "GBP",
	"IN": "INR",
	"EU": "EUR",
	"AU": "AUD",
	"CA": "CAD",
	"JP": "JPY",
}

var euRegions = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

// CurrencyForCountry returns the local currency of a supported country, or USD.
func CurrencyForCountry(country string) string {
	if currency, ok := countryCurrencies[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return currency
	}
	return "USD"
}

// CountryFromAcceptLanguage picks the first supported country from an
// Accept-Language header. Tags without a region use the most likely one,
// so "ja" resolves to JP and "de" to EU.
func CountryFromAcceptLanguage(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", false
	}

	for _, tag := range tags {
		region, confidence := tag.Region()
		if confidence == language.No {
			continue
		}
		if country, ok := countryForRegion(region.String()); ok {
			return country, true
		}
	}

	return "", false
}

func countryForRegion(region string) (string, bool) {
	if region == "GB" {
		return "UK", true
	}
	if _, ok := euRegions[region]; ok {
		return "EU", true
	}
	country, err := ParseCountry(region)
	if err != nil {
		return "", false
	}
	return country, true
}

// SettingsForLocale returns default settings localized to an Accept-Language header.
func SettingsForLocale(userID uuid.UUID, acceptLanguage string) Settings {
	settings := DefaultSettings(userID)
	if country, ok := CountryFromAcceptLanguage(acceptLanguage); ok {
		settings.Country = country
		settings.DefaultCurrency = CurrencyForCountry(country)
	}
	return settings
}
