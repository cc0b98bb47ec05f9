package models

import (
	"errors"
	"strings"
)

type Frequency string

type Category string

const (
	FrequencyMonthly Frequency = "Monthly"
	FrequencyYearly  Frequency = "Yearly"
	FrequencyWeekly  Frequency = "Weekly"

	CategoryEntertainment Category = "Entertainment"
	CategoryProductivity  Category = "Productivity"
	CategoryHealth        Category = "Health"
	CategoryUtilities     Category = "Utilities"
	CategoryFood          Category = "Food"
	CategoryOther         Category = "Other"
)

var (
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidCountry   = errors.New("invalid country")
)

var (
	Frequencies = []Frequency{FrequencyMonthly, FrequencyYearly, FrequencyWeekly}
	Categories  = []Category{
		CategoryEntertainment,
		CategoryProductivity,
		CategoryHealth,
		CategoryUtilities,
		CategoryFood,
		CategoryOther,
	}
	// Currencies offered as a default currency.
	Currencies = []string{"USD", "EUR", "GBP", "INR", "JPY", "AUD", "CAD"}
	// Countries with a dedicated market context.
	Countries = []string{"US", "UK", "IN", "EU", "AU", "CA", "JP"}
)

// ParseFrequency matches a frequency case-insensitively.
func ParseFrequency(value string) (Frequency, error) {
	trimmed := strings.TrimSpace(value)
	for _, f := range Frequencies {
		if strings.EqualFold(string(f), trimmed) {
			return f, nil
		}
	}
	return "", ErrInvalidFrequency
}

// ParseCategory matches a category case-insensitively.
func ParseCategory(value string) (Category, error) {
	trimmed := strings.TrimSpace(value)
	for _, c := range Categories {
		if strings.EqualFold(string(c), trimmed) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// ParseCurrency normalizes a default currency code.
func ParseCurrency(value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	for _, c := range Currencies {
		if c == code {
			return code, nil
		}
	}
	return "", ErrInvalidCurrency
}

// ParseCountry normalizes a country code.
func ParseCountry(value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	for _, c := range Countries {
		if c == code {
			return code, nil
		}
	}
	return "", ErrInvalidCountry
}

// IsCurrencyCode reports whether value looks like a three letter currency code.
func IsCurrencyCode(value string) bool {
	if len(value) != 3 {
		return false
	}
	for _, r := range value {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
