package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/subscription-reaper/backend/internal/models"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the user's settings, or the defaults when none were saved.
func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID) (models.Settings, error) {
	var settings models.Settings

	err := r.db.QueryRow(ctx,
		`SELECT user_id, default_currency, country, primary_api_key, budget_enabled, monthly_budget, annual_budget, updated_at
		 FROM user_settings
		 WHERE user_id = $1`,
		userID,
	).Scan(
		&settings.UserID,
		&settings.DefaultCurrency,
		&settings.Country,
		&settings.PrimaryAPIKey,
		&settings.BudgetEnabled,
		&settings.MonthlyBudget,
		&settings.AnnualBudget,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultSettings(userID), nil
		}
		return settings, err
	}

	settings.DefaultCurrency = strings.TrimSpace(settings.DefaultCurrency)
	return settings, nil
}

// Save stores every setting except the API key, which is left untouched.
func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) (models.Settings, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_settings (user_id, default_currency, country, budget_enabled, monthly_budget, annual_budget)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE
		 SET default_currency = EXCLUDED.default_currency,
		     country = EXCLUDED.country,
		     budget_enabled = EXCLUDED.budget_enabled,
		     monthly_budget = EXCLUDED.monthly_budget,
		     annual_budget = EXCLUDED.annual_budget,
		     updated_at = NOW()`,
		settings.UserID,
		settings.DefaultCurrency,
		settings.Country,
		settings.BudgetEnabled,
		settings.MonthlyBudget,
		settings.AnnualBudget,
	)
	if err != nil {
		return settings, err
	}

	return r.Get(ctx, settings.UserID)
}

// SetPrimaryAPIKey stores the user's engine key. A nil or empty key clears it.
func (r *SettingsRepository) SetPrimaryAPIKey(ctx context.Context, userID uuid.UUID, key *string) error {
	if key != nil && strings.TrimSpace(*key) == "" {
		key = nil
	}

	defaults := models.DefaultSettings(userID)
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_settings (user_id, default_currency, country, monthly_budget, annual_budget, primary_api_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE
		 SET primary_api_key = EXCLUDED.primary_api_key,
		     updated_at = NOW()`,
		userID,
		defaults.DefaultCurrency,
		defaults.Country,
		defaults.MonthlyBudget,
		defaults.AnnualBudget,
		key,
	)
	return err
}
