package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/billing"
	"example.com/subscription-reaper/backend/internal/models"
)

// TextSource writes the title and body of a renewal reminder.
type TextSource interface {
	Generate(ctx context.Context, sub models.Subscription) ai.Notification
}

// Planner turns saved subscriptions into armed renewal reminders.
type Planner struct {
	text      TextSource
	scheduler *Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

func NewPlanner(text TextSource, scheduler *Scheduler, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Planner{text: text, scheduler: scheduler, logger: logger, now: time.Now}
}

// Plan arms the reminder one day before the next billing date, replacing any earlier one.
// Reminders that would already be due are cancelled without asking for text.
func (p *Planner) Plan(ctx context.Context, sub models.Subscription) (bool, error) {
	fireAt := billing.ReminderTime(sub.NextBillingDate)
	if !fireAt.After(p.now()) {
		return false, p.scheduler.Cancel(ctx, sub.ID)
	}

	text := ai.FallbackNotification(sub)
	if p.text != nil {
		text = p.text.Generate(ctx, sub)
	}

	armed, err := p.scheduler.Schedule(ctx, models.Reminder{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Title:          text.Title,
		Body:           text.Body,
		FireAt:         fireAt,
	})
	if err != nil {
		return false, err
	}

	if armed {
		p.logger.Info("renewal reminder scheduled",
			slog.String("subscription_id", sub.ID.String()),
			slog.Time("fire_at", fireAt),
		)
	}
	return armed, nil
}

// PlanAll arms reminders for a batch and logs failures without stopping.
func (p *Planner) PlanAll(ctx context.Context, subs []models.Subscription) int {
	armed := 0
	for _, sub := range subs {
		ok, err := p.Plan(ctx, sub)
		if err != nil {
			p.logger.Warn("failed to schedule renewal reminder",
				slog.String("subscription_id", sub.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			armed++
		}
	}
	return armed
}

func (p *Planner) Cancel(ctx context.Context, subscriptionID uuid.UUID) error {
	return p.scheduler.Cancel(ctx, subscriptionID)
}
