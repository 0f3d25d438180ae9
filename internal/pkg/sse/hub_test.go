package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicOnly(t *testing.T) {
	hub := NewHub(4)

	orgA, cleanupA := hub.Subscribe("org-a")
	defer cleanupA()
	orgB, cleanupB := hub.Subscribe("org-b")
	defer cleanupB()

	hub.Publish("org-a", Event{Event: "attendance", Data: "scan-1"})

	select {
	case ev := <-orgA:
		assert.Equal(t, "org-a", ev.Topic)
		assert.Equal(t, "attendance", ev.Event)
		assert.Equal(t, "scan-1", ev.Data)
	default:
		t.Fatal("subscriber of org-a did not receive the event")
	}

	select {
	case ev := <-orgB:
		t.Fatalf("subscriber of org-b received %v", ev)
	default:
	}
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(1)
	ch, cleanup := hub.Subscribe("org")
	defer cleanup()

	hub.Publish("org", Event{Event: "first"})
	hub.Publish("org", Event{Event: "second"})

	ev := <-ch
	assert.Equal(t, "first", ev.Event)
	select {
	case ev := <-ch:
		t.Fatalf("expected dropped event, got %v", ev)
	default:
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub(0)
	ch, cleanup := hub.Subscribe("org")
	_, cleanup2 := hub.Subscribe("org")
	require.Equal(t, 2, hub.SubscriberCount("org"))
	require.Equal(t, 2, hub.TotalSubscribers())

	cleanup()
	cleanup()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 1, hub.SubscriberCount("org"))

	cleanup2()
	assert.Equal(t, 0, hub.TotalSubscribers())
}
