package notifications

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/subscription-reaper/backend/internal/models"
)

// Store persists armed reminders so they survive restarts.
type Store interface {
	Upsert(ctx context.Context, reminder models.Reminder) error
	Delete(ctx context.Context, subscriptionID uuid.UUID) error
	ListPending(ctx context.Context, after time.Time) ([]models.Reminder, error)
}

// Publisher delivers fired reminders.
type Publisher interface {
	Publish(userID uuid.UUID, event Event)
}

type armed struct {
	reminder models.Reminder
	timer    *time.Timer
}

// Scheduler keeps at most one pending reminder per subscription.
type Scheduler struct {
	mu        sync.Mutex
	pending   map[uuid.UUID]*armed
	publisher Publisher
	store     Store
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(publisher Publisher, store Store, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		pending:   make(map[uuid.UUID]*armed),
		publisher: publisher,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Schedule arms a reminder, replacing any previous one for the same subscription.
// A reminder whose fire time has passed is not armed and false is returned.
func (s *Scheduler) Schedule(ctx context.Context, reminder models.Reminder) (bool, error) {
	delay := reminder.FireAt.Sub(s.now())
	if delay <= 0 {
		return false, s.Cancel(ctx, reminder.SubscriptionID)
	}

	if s.store != nil {
		if err := s.store.Upsert(ctx, reminder); err != nil {
			return false, err
		}
	}

	s.arm(reminder, delay)
	return true, nil
}

// Cancel drops the pending reminder of a subscription, if any.
func (s *Scheduler) Cancel(ctx context.Context, subscriptionID uuid.UUID) error {
	s.mu.Lock()
	if entry, ok := s.pending[subscriptionID]; ok {
		entry.timer.Stop()
		delete(s.pending, subscriptionID)
	}
	s.mu.Unlock()

	if s.store != nil {
		return s.store.Delete(ctx, subscriptionID)
	}
	return nil
}

// Restore re-arms the reminders kept in the store.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	now := s.now()
	reminders, err := s.store.ListPending(ctx, now)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, reminder := range reminders {
		delay := reminder.FireAt.Sub(now)
		if delay <= 0 {
			continue
		}
		s.arm(reminder, delay)
		restored++
	}

	s.logger.Info("renewal reminders restored", slog.Int("count", restored))
	return restored, nil
}

// Pending lists armed reminders ordered by fire time.
func (s *Scheduler) Pending() []models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Reminder, 0, len(s.pending))
	for _, entry := range s.pending {
		out = append(out, entry.reminder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Stop disarms every timer without touching the store.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) arm(reminder models.Reminder, delay time.Duration) {
	entry := &armed{reminder: reminder}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.pending[reminder.SubscriptionID]; ok {
		previous.timer.Stop()
	}
	entry.timer = time.AfterFunc(delay, func() { s.fire(entry) })
	s.pending[reminder.SubscriptionID] = entry
}

func (s *Scheduler) fire(entry *armed) {
	id := entry.reminder.SubscriptionID

	s.mu.Lock()
	current, ok := s.pending[id]
	if !ok || current != entry {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(entry.reminder.UserID, Event{Type: EventRenewalReminder, Data: entry.reminder})
	}

	if s.store != nil {
		if err := s.store.Delete(context.Background(), id); err != nil {
			s.logger.Warn("failed to clear fired reminder",
				slog.String("subscription_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
