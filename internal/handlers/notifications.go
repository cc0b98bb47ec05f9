package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/notifications"
)

const heartbeatInterval = 30 * time.Second

type NotificationHandler struct {
	Hub       *notifications.Hub
	Scheduler *notifications.Scheduler
}

func NewNotificationHandler(hub *notifications.Hub, scheduler *notifications.Scheduler) *NotificationHandler {
	return &NotificationHandler{Hub: hub, Scheduler: scheduler}
}

// Stream opens the user's event stream: renewal reminders, subscription changes, analyses and rate updates.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UTC(),
		Data:      map[string]string{"user_id": userID.String()},
	})
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := c.Response().Write([]byte(": ping\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

// Pending lists the user's armed renewal reminders.
func (h *NotificationHandler) Pending(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	reminders := make([]models.Reminder, 0)
	if h.Scheduler != nil {
		for _, reminder := range h.Scheduler.Pending() {
			if reminder.UserID == userID {
				reminders = append(reminders, reminder)
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"reminders": reminders})
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishSubscriptionChange(hub *notifications.Hub, userID, subscriptionID uuid.UUID, action string) {
	if hub == nil {
		return
	}

	hub.Publish(userID, notifications.Event{
		Type: notifications.EventSubscriptionChanged,
		Data: map[string]interface{}{
			"subscription_id": subscriptionID.String(),
			"action":          action,
		},
	})
}

func publishAnalysisReady(hub *notifications.Hub, userID uuid.UUID, engine ai.Engine, totalSavings float64) {
	if hub == nil {
		return
	}

	hub.Publish(userID, notifications.Event{
		Type: notifications.EventAnalysisReady,
		Data: map[string]interface{}{
			"engine":                  engine,
			"total_potential_savings": totalSavings,
		},
	})
}
