package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"example.com/subscription-reaper/backend/internal/models"
)

const userColumns = `id, email, password_hash, name, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository returns a user repository backed by the pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// UserProfile is a user with their settings and how many subscriptions they track.
type UserProfile struct {
	User          models.User
	Settings      models.Settings
	HasAPIKey     bool
	Subscriptions int
}

// Create inserts a user together with their initial settings row.
// A duplicate email yields ErrConflict and nothing is written.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string, settings models.Settings) (models.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err := scanUser(tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		email, passwordHash, name,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user, ErrConflict
		}
		return user, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_settings (user_id, default_currency, country, budget_enabled, monthly_budget, annual_budget)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID,
		settings.DefaultCurrency,
		settings.Country,
		settings.BudgetEnabled,
		settings.MonthlyBudget,
		settings.AnnualBudget,
	)
	if err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// GetByEmail looks a user up by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// Profile loads a user, their settings and their subscription count in one round trip.
// Users without a settings row get the defaults.
func (r *UserRepository) Profile(ctx context.Context, id uuid.UUID) (UserProfile, error) {
	var (
		profile       UserProfile
		name          *string
		currency      *string
		country       *string
		budgetEnabled *bool
		monthly       decimal.NullDecimal
		annual        decimal.NullDecimal
		settingsAt    *time.Time
	)

	err := r.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.password_hash, u.name, u.created_at, u.updated_at,
		        s.default_currency, s.country, s.budget_enabled, s.monthly_budget, s.annual_budget, s.updated_at,
		        COALESCE(s.primary_api_key <> '', FALSE),
		        (SELECT COUNT(*) FROM subscriptions WHERE user_id = u.id)
		 FROM users u
		 LEFT JOIN user_settings s ON s.user_id = u.id
		 WHERE u.id = $1`,
		id,
	).Scan(
		&profile.User.ID,
		&profile.User.Email,
		&profile.User.PasswordHash,
		&name,
		&profile.User.CreatedAt,
		&profile.User.UpdatedAt,
		&currency,
		&country,
		&budgetEnabled,
		&monthly,
		&annual,
		&settingsAt,
		&profile.HasAPIKey,
		&profile.Subscriptions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	profile.User.Name = name
	profile.Settings = models.DefaultSettings(id)
	if currency != nil {
		profile.Settings.DefaultCurrency = strings.TrimSpace(*currency)
	}
	if country != nil {
		profile.Settings.Country = *country
	}
	if budgetEnabled != nil {
		profile.Settings.BudgetEnabled = *budgetEnabled
	}
	if monthly.Valid {
		profile.Settings.MonthlyBudget = monthly.Decimal
	}
	if annual.Valid {
		profile.Settings.AnnualBudget = annual.Decimal
	}
	if settingsAt != nil {
		profile.Settings.UpdatedAt = *settingsAt
	}

	return profile, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
