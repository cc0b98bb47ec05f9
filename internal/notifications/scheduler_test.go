package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"example.com/subscription-reaper/backend/internal/models"
)

type memoryStore struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]models.Reminder
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reminders: make(map[uuid.UUID]models.Reminder)}
}

func (m *memoryStore) Upsert(_ context.Context, reminder models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders[reminder.SubscriptionID] = reminder
	return nil
}

func (m *memoryStore) Delete(_ context.Context, subscriptionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reminders, subscriptionID)
	return nil
}

func (m *memoryStore) ListPending(_ context.Context, after time.Time) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Reminder, 0, len(m.reminders))
	for _, reminder := range m.reminders {
		if reminder.FireAt.After(after) {
			out = append(out, reminder)
		}
	}
	return out, nil
}

func (m *memoryStore) has(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reminders[id]
	return ok
}

func reminderIn(userID uuid.UUID, delay time.Duration, title string) models.Reminder {
	return models.Reminder{
		SubscriptionID: uuid.New(),
		UserID:         userID,
		Title:          title,
		Body:           "renews tomorrow",
		FireAt:         time.Now().Add(delay),
	}
}

func receive(t *testing.T, ch <-chan Event, within time.Duration) (Event, bool) {
	t.Helper()
	select {
	case event := <-ch:
		return event, true
	case <-time.After(within):
		return Event{}, false
	}
}

func TestSchedulerFiresReminder(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	store := newMemoryStore()
	scheduler := NewScheduler(hub, store, nil)
	t.Cleanup(scheduler.Stop)

	userID := uuid.New()
	events, unsubscribe := hub.Subscribe(userID)
	t.Cleanup(unsubscribe)

	reminder := reminderIn(userID, 30*time.Millisecond, "Netflix Renewal")
	armedNow, err := scheduler.Schedule(context.Background(), reminder)
	require.NoError(t, err)
	require.True(t, armedNow)
	require.True(t, store.has(reminder.SubscriptionID))

	event, ok := receive(t, events, time.Second)
	require.True(t, ok)
	require.Equal(t, EventRenewalReminder, event.Type)
	require.Equal(t, "Netflix Renewal", event.Data.(models.Reminder).Title)

	require.Eventually(t, func() bool { return !store.has(reminder.SubscriptionID) }, time.Second, 5*time.Millisecond)
	require.Empty(t, scheduler.Pending())
}

func TestSchedulerReplacesReminder(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	scheduler := NewScheduler(hub, nil, nil)
	t.Cleanup(scheduler.Stop)

	userID := uuid.New()
	events, unsubscribe := hub.Subscribe(userID)
	t.Cleanup(unsubscribe)

	first := reminderIn(userID, 40*time.Millisecond, "old")
	_, err := scheduler.Schedule(context.Background(), first)
	require.NoError(t, err)

	second := first
	second.Title = "new"
	second.FireAt = time.Now().Add(80 * time.Millisecond)
	_, err = scheduler.Schedule(context.Background(), second)
	require.NoError(t, err)
	require.Len(t, scheduler.Pending(), 1)

	event, ok := receive(t, events, time.Second)
	require.True(t, ok)
	require.Equal(t, "new", event.Data.(models.Reminder).Title)

	_, ok = receive(t, events, 150*time.Millisecond)
	require.False(t, ok)
}

func TestSchedulerSkipsPastFireTime(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	scheduler := NewScheduler(NewHub(), store, nil)

	reminder := reminderIn(uuid.New(), -time.Hour, "late")
	require.NoError(t, store.Upsert(context.Background(), reminder))

	armedNow, err := scheduler.Schedule(context.Background(), reminder)
	require.NoError(t, err)
	require.False(t, armedNow)
	require.Empty(t, scheduler.Pending())
	require.False(t, store.has(reminder.SubscriptionID))
}

func TestSchedulerCancel(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	store := newMemoryStore()
	scheduler := NewScheduler(hub, store, nil)

	userID := uuid.New()
	events, unsubscribe := hub.Subscribe(userID)
	t.Cleanup(unsubscribe)

	reminder := reminderIn(userID, 30*time.Millisecond, "cancel me")
	_, err := scheduler.Schedule(context.Background(), reminder)
	require.NoError(t, err)
	require.NoError(t, scheduler.Cancel(context.Background(), reminder.SubscriptionID))
	require.False(t, store.has(reminder.SubscriptionID))

	_, ok := receive(t, events, 100*time.Millisecond)
	require.False(t, ok)
	require.NoError(t, scheduler.Cancel(context.Background(), uuid.New()))
}

func TestSchedulerRestore(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	userID := uuid.New()
	future := reminderIn(userID, time.Hour, "future")
	past := reminderIn(userID, -time.Hour, "past")
	require.NoError(t, store.Upsert(context.Background(), future))
	require.NoError(t, store.Upsert(context.Background(), past))

	scheduler := NewScheduler(NewHub(), store, nil)
	t.Cleanup(scheduler.Stop)

	restored, err := scheduler.Restore(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, restored)

	pending := scheduler.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, future.SubscriptionID, pending[0].SubscriptionID)
}
