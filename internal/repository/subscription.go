package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/subscription-reaper/backend/internal/models"
)

const subscriptionColumns = `id, user_id, name, amount, currency, frequency, category, icon, logo_url,
	full_service_name, source_id, start_date, next_billing_date, notes, created_at, updated_at`

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// SubscriptionFilter narrows a listing by name substring and category.
type SubscriptionFilter struct {
	Query    string
	Category *models.Category
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create stores a new subscription and returns it with generated fields.
func (r *SubscriptionRepository) Create(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO subscriptions
		 (user_id, name, amount, currency, frequency, category, icon, logo_url, full_service_name, source_id, start_date, next_billing_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+subscriptionColumns,
		sub.UserID, sub.Name, sub.Amount, sub.Currency, sub.Frequency, sub.Category, sub.Icon, sub.LogoURL,
		sub.FullServiceName, sub.SourceID, sub.StartDate, sub.NextBillingDate, sub.Notes,
	)
	return scanSubscription(row)
}

// Update overwrites a subscription owned by the user.
func (r *SubscriptionRepository) Update(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE subscriptions
		 SET name = $3,
		     amount = $4,
		     currency = $5,
		     frequency = $6,
		     category = $7,
		     icon = $8,
		     logo_url = $9,
		     full_service_name = $10,
		     source_id = $11,
		     start_date = $12,
		     next_billing_date = $13,
		     notes = $14,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+subscriptionColumns,
		sub.ID, sub.UserID, sub.Name, sub.Amount, sub.Currency, sub.Frequency, sub.Category, sub.Icon, sub.LogoURL,
		sub.FullServiceName, sub.SourceID, sub.StartDate, sub.NextBillingDate, sub.Notes,
	)

	updated, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, ErrNotFound
	}
	return updated, err
}

// Delete removes a subscription owned by the user.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID returns a subscription owned by the user.
func (r *SubscriptionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (models.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	sub, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return sub, ErrNotFound
	}
	return sub, err
}

// List returns the user's subscriptions ordered by next billing date, soonest first.
func (r *SubscriptionRepository) List(ctx context.Context, userID uuid.UUID, filter SubscriptionFilter) ([]models.Subscription, error) {
	where, args := buildSubscriptionWhere(userID, filter)
	query := fmt.Sprintf("SELECT %s FROM subscriptions%s ORDER BY next_billing_date ASC, name ASC", subscriptionColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subs, nil
}

// ListAll returns every subscription of the user.
func (r *SubscriptionRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	return r.List(ctx, userID, SubscriptionFilter{})
}

// AdvancePastDue moves next billing dates that are behind today forward along their schedule.
// It returns the rows that changed so callers can re-arm reminders.
func (r *SubscriptionRepository) AdvancePastDue(ctx context.Context, today time.Time, roll func(frequency models.Frequency, start, current, today time.Time) (time.Time, error)) ([]models.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE next_billing_date < $1
		 FOR UPDATE`,
		today,
	)
	if err != nil {
		return nil, err
	}

	due := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		due = append(due, sub)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range due {
		next, err := roll(due[i].Frequency, due[i].StartDate, due[i].NextBillingDate, today)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx,
			`UPDATE subscriptions SET next_billing_date = $2, updated_at = NOW() WHERE id = $1`,
			due[i].ID, next,
		)
		if err != nil {
			return nil, err
		}
		due[i].NextBillingDate = next
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return due, nil
}

func buildSubscriptionWhere(userID uuid.UUID, filter SubscriptionFilter) (string, []interface{}) {
	args := []interface{}{userID}
	clauses := []string{"user_id = $1"}

	if query := strings.TrimSpace(filter.Query); query != "" {
		args = append(args, "%"+escapeLike(query)+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&sub.Amount,
		&sub.Currency,
		&sub.Frequency,
		&sub.Category,
		&sub.Icon,
		&sub.LogoURL,
		&sub.FullServiceName,
		&sub.SourceID,
		&sub.StartDate,
		&sub.NextBillingDate,
		&sub.Notes,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	sub.Currency = strings.TrimSpace(sub.Currency)
	return sub, err
}
