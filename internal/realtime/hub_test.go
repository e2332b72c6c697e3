package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

func event(id string) models.NotificationEvent {
	return models.NotificationEvent{
		Kind: "insert",
		Notification: models.Notification{
			ID:     id,
			UserID: "user-1",
			Title:  "test",
		},
	}
}

func TestHub_PublishDeliversInOrder(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("user-1")
	defer cancel()

	hub.Publish("user-1", event("n1"))
	hub.Publish("user-1", event("n2"))
	hub.Publish("user-1", event("n3"))

	var got []string
	for range 3 {
		select {
		case ev := <-ch:
			got = append(got, ev.Notification.ID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.Equal(t, []string{"n1", "n2", "n3"}, got)
}

func TestHub_PublishOnlyToRecipient(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe("user-1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("user-2")
	defer cancel2()

	hub.Publish("user-1", event("n1"))

	select {
	case ev := <-ch1:
		assert.Equal(t, "n1", ev.Notification.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case <-ch2:
		t.Fatal("unexpected event for another recipient")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("user-1")

	cancel()
	// Повторная отписка безопасна.
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	// Публикация после отписки не должна паниковать.
	hub.Publish("user-1", event("n1"))
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("user-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish("user-1", event("n"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}
