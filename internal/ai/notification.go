package ai

import (
	"context"
	"fmt"
	"log/slog"

	"example.com/subscription-reaper/backend/internal/models"
)

// NotificationGenerator writes renewal reminder text.
type NotificationGenerator struct {
	client Client
	logger *slog.Logger
}

func NewNotificationGenerator(client Client, logger *slog.Logger) *NotificationGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationGenerator{client: client, logger: logger}
}

// Generate asks the engine for a personalized reminder and falls back to fixed text on any failure.
func (g *NotificationGenerator) Generate(ctx context.Context, sub models.Subscription) Notification {
	if g.client == nil {
		return FallbackNotification(sub)
	}

	content, _, err := g.client.Chat(ctx, []Message{{Role: "user", Content: NotificationPrompt(sub)}})
	if err == nil {
		var notification Notification
		notification, err = ParseNotification(content)
		if err == nil {
			return notification
		}
	}

	g.logger.Warn("notification generation failed",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("error", err.Error()),
	)
	return FallbackNotification(sub)
}

// FallbackNotification is the reminder text used without an engine.
func FallbackNotification(sub models.Subscription) Notification {
	return Notification{
		Title: fmt.Sprintf("%s Renewal", sub.Name),
		Body:  fmt.Sprintf("Your %s subscription for %s %s is renewing tomorrow.", sub.Name, sub.Amount.StringFixed(2), sub.Currency),
	}
}
