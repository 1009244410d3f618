package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkwise/pkg/logger"
)

func TestHubRoomIsolation(t *testing.T) {
	hub := NewHub()
	lotA := uuid.New()
	lotB := uuid.New()

	subA := hub.Subscribe(lotA)
	defer subA.Close()
	subB := hub.Subscribe(lotB)
	defer subB.Close()

	hub.Broadcast(SlotEvent{LotID: lotA, Identifier: "A-01", Status: "RESERVED", OccurredAt: time.Now()})

	select {
	case event := <-subA.C:
		slot, ok := event.(SlotEvent)
		require.True(t, ok)
		assert.Equal(t, "A-01", slot.Identifier)
		assert.Equal(t, "RESERVED", slot.Status)
	case <-time.After(time.Second):
		t.Fatal("subscriber for lot A never received the event")
	}

	select {
	case event := <-subB.C:
		t.Fatalf("subscriber for lot B received foreign event %v", event)
	default:
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	lotID := uuid.New()

	first := hub.Subscribe(lotID)
	defer first.Close()
	second := hub.Subscribe(lotID)
	defer second.Close()

	require.Equal(t, 2, hub.SubscriberCount(lotID))

	hub.Broadcast(SlotEvent{LotID: lotID, Identifier: "B-07", Status: "AVAILABLE"})

	for _, sub := range []*Subscription{first, second} {
		select {
		case event := <-sub.C:
			assert.Equal(t, "B-07", event.(SlotEvent).Identifier)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the broadcast")
		}
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	lotID := uuid.New()

	slow := hub.Subscribe(lotID)
	defer slow.Close()

	// Overfill the buffer; the publisher must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Broadcast(SlotEvent{LotID: lotID, Status: "OCCUPIED"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}

	// The buffer holds at most subscriberBuffer events; the rest were dropped.
	received := 0
	for {
		select {
		case <-slow.C:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestBroadcasterLotEventsReachHubWithoutKafka(t *testing.T) {
	hub := NewHub()
	lotID := uuid.New()

	sub := hub.Subscribe(lotID)
	defer sub.Close()

	b := NewBroadcaster(hub, nil, nil, logger.GetDefault())
	b.LotChanged(lotID, LotEventUpdated, map[string]string{"name": "Central Garage"})

	select {
	case event := <-sub.C:
		lot, ok := event.(LotEvent)
		require.True(t, ok)
		assert.Equal(t, lotID, lot.LotID)
		assert.Equal(t, LotEventUpdated, lot.Kind)
	case <-time.After(time.Second):
		t.Fatal("lot event never reached the in-process hub")
	}
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub()
	lotID := uuid.New()

	sub := hub.Subscribe(lotID)
	require.Equal(t, 1, hub.SubscriberCount(lotID))

	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount(lotID))

	// Close is idempotent.
	sub.Close()

	_, open := <-sub.C
	assert.False(t, open)

	// Broadcasting into an empty room is a no-op.
	hub.Broadcast(SlotEvent{LotID: lotID, Status: "AVAILABLE"})
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub()
	lotID := uuid.New()

	sub := hub.Subscribe(lotID)
	hub.Shutdown()

	_, open := <-sub.C
	assert.False(t, open)

	// Subscriptions taken after shutdown come back already closed.
	late := hub.Subscribe(lotID)
	_, open = <-late.C
	assert.False(t, open)

	// A second shutdown is harmless.
	hub.Shutdown()
}
