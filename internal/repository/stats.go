package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/subscription-reaper/backend/internal/models"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

type OverviewStats struct {
	Total        int
	Weekly       int
	Monthly      int
	Yearly       int
	Categories   int
	RenewingSoon int
	NextRenewal  *time.Time
	OldestStart  *time.Time
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview counts the user's subscriptions and the renewals due within the window.
func (r *StatsRepository) Overview(ctx context.Context, userID uuid.UUID, today time.Time, window int) (OverviewStats, error) {
	var stats OverviewStats
	if window <= 0 {
		return stats, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE frequency = 'Weekly'),
		        COUNT(*) FILTER (WHERE frequency = 'Monthly'),
		        COUNT(*) FILTER (WHERE frequency = 'Yearly'),
		        COUNT(DISTINCT category),
		        COUNT(*) FILTER (WHERE next_billing_date >= $2 AND next_billing_date < $2::date + $3::int),
		        MIN(next_billing_date) FILTER (WHERE next_billing_date >= $2),
		        MIN(start_date)
		 FROM subscriptions
		 WHERE user_id = $1`,
		userID, today, window,
	).Scan(
		&stats.Total,
		&stats.Weekly,
		&stats.Monthly,
		&stats.Yearly,
		&stats.Categories,
		&stats.RenewingSoon,
		&stats.NextRenewal,
		&stats.OldestStart,
	)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// UpcomingRenewals lists subscriptions billing within the next days, soonest first.
func (r *StatsRepository) UpcomingRenewals(ctx context.Context, userID uuid.UUID, today time.Time, days int) ([]models.Subscription, error) {
	if days <= 0 {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE user_id = $1
		   AND next_billing_date >= $2
		   AND next_billing_date < $2::date + $3::int
		 ORDER BY next_billing_date ASC, name ASC`,
		userID, today, days,
	)
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
