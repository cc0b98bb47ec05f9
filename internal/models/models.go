package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subscription is a recurring charge tracked for one user.
type Subscription struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Frequency       Frequency       `json:"frequency"`
	Category        Category        `json:"category"`
	Icon            string          `json:"icon"`
	LogoURL         *string         `json:"logo_url,omitempty"`
	FullServiceName *string         `json:"full_service_name,omitempty"`
	SourceID        *string         `json:"source_id,omitempty"`
	StartDate       time.Time       `json:"start_date"`
	NextBillingDate time.Time       `json:"next_billing_date"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Settings holds per-user preferences.
type Settings struct {
	UserID          uuid.UUID       `json:"user_id"`
	DefaultCurrency string          `json:"default_currency"`
	Country         string          `json:"country"`
	PrimaryAPIKey   *string         `json:"-"`
	BudgetEnabled   bool            `json:"budget_enabled"`
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
	AnnualBudget    decimal.Decimal `json:"annual_budget"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// HasPrimaryAPIKey reports whether the user configured a primary engine key.
func (s Settings) HasPrimaryAPIKey() bool {
	return s.PrimaryAPIKey != nil && *s.PrimaryAPIKey != ""
}

// DefaultSettings returns the settings used until the user saves their own.
func DefaultSettings(userID uuid.UUID) Settings {
	return Settings{
		UserID:          userID,
		DefaultCurrency: "USD",
		Country:         "US",
		MonthlyBudget:   decimal.NewFromInt(50),
		AnnualBudget:    decimal.NewFromInt(600),
	}
}

// Reminder is a renewal notification armed for a subscription.
type Reminder struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	FireAt         time.Time `json:"fire_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
