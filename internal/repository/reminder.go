package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/subscription-reaper/backend/internal/models"
)

// ReminderRepository keeps armed renewal reminders.
type ReminderRepository struct {
	db *pgxpool.Pool
}

func NewReminderRepository(db *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Upsert stores the reminder, replacing the previous one of the subscription.
func (r *ReminderRepository) Upsert(ctx context.Context, reminder models.Reminder) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reminders (subscription_id, user_id, title, body, fire_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (subscription_id) DO UPDATE
		 SET title = EXCLUDED.title,
		     body = EXCLUDED.body,
		     fire_at = EXCLUDED.fire_at`,
		reminder.SubscriptionID, reminder.UserID, reminder.Title, reminder.Body, reminder.FireAt,
	)
	return err
}

func (r *ReminderRepository) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE subscription_id = $1`, subscriptionID)
	return err
}

// ListPending returns reminders that fire after the given time.
func (r *ReminderRepository) ListPending(ctx context.Context, after time.Time) ([]models.Reminder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT subscription_id, user_id, title, body, fire_at
		 FROM reminders
		 WHERE fire_at > $1
		 ORDER BY fire_at`,
		after,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]models.Reminder, 0)
	for rows.Next() {
		var reminder models.Reminder
		if err := rows.Scan(&reminder.SubscriptionID, &reminder.UserID, &reminder.Title, &reminder.Body, &reminder.FireAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}

// ListByUser returns the reminders of one user ordered by fire time.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reminder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT subscription_id, user_id, title, body, fire_at
		 FROM reminders
		 WHERE user_id = $1
		 ORDER BY fire_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]models.Reminder, 0)
	for rows.Next() {
		var reminder models.Reminder
		if err := rows.Scan(&reminder.SubscriptionID, &reminder.UserID, &reminder.Title, &reminder.Body, &reminder.FireAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}
