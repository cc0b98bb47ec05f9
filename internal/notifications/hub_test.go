package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe checks delivery to a subscriber.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.Publish(userID, Event{Type: EventRenewalReminder})

	select {
	case event := <-ch:
		if event.Type != EventRenewalReminder {
			t.Fatalf("expected event type %s, got %s", EventRenewalReminder, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers checks that events stay with their user.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()
	owner := uuid.New()
	other := uuid.New()

	otherCh, unsubscribe := hub.Subscribe(other)
	defer unsubscribe()

	hub.Publish(owner, Event{Type: EventSubscriptionChanged})

	select {
	case event := <-otherCh:
		t.Fatalf("expected no event for another user, got %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestHubBroadcast checks that broadcast reaches every user.
func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	first, unsubscribeFirst := hub.Subscribe(uuid.New())
	defer unsubscribeFirst()
	second, unsubscribeSecond := hub.Subscribe(uuid.New())
	defer unsubscribeSecond()

	hub.Broadcast(Event{Type: EventRatesUpdated})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case event := <-ch:
			if event.Type != EventRatesUpdated {
				t.Fatalf("expected %s, got %s", EventRatesUpdated, event.Type)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatal("expected broadcast to be delivered")
		}
	}
}

// TestHubUnsubscribe checks that the channel is closed and can be released twice.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	if hub.Connected(userID) != 1 {
		t.Fatalf("expected 1 stream, got %d", hub.Connected(userID))
	}
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Connected(userID) != 0 {
		t.Fatalf("expected 0 streams, got %d", hub.Connected(userID))
	}
}
