package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Hub fans events out to in-process subscribers with per-lot room
// semantics: a subscriber registers for one lot and only sees that lot's
// events, slot-level and lot-level alike. The hub is constructed in main and injected wherever events are
// published; it has no package-level state.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	ch chan Event
}

// Subscription is a live per-lot event feed. Close it when done or the hub
// will keep delivering into its buffer.
type Subscription struct {
	C     <-chan Event
	hub   *Hub
	lotID uuid.UUID
	sub   *subscriber
	once  sync.Once
}

const subscriberBuffer = 16

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*subscriber]struct{}),
	}
}

// Subscribe joins the room for a lot.
func (h *Hub) Subscribe(lotID uuid.UUID) *Subscription {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
	} else {
		room, ok := h.rooms[lotID]
		if !ok {
			room = make(map[*subscriber]struct{})
			h.rooms[lotID] = room
		}
		room[sub] = struct{}{}
	}

	return &Subscription{C: sub.ch, hub: h, lotID: lotID, sub: sub}
}

// Close leaves the room and drops the channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if room, ok := s.hub.rooms[s.lotID]; ok {
			if _, live := room[s.sub]; live {
				delete(room, s.sub)
				close(s.sub.ch)
				if len(room) == 0 {
					delete(s.hub.rooms, s.lotID)
				}
			}
		}
	})
}

// Broadcast delivers an event to every subscriber of its room. Delivery is
// best-effort: a subscriber whose buffer is full misses the event rather
// than blocking the publisher.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[event.Room()] {
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the live subscribers for a lot.
func (h *Hub) SubscriberCount(lotID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[lotID])
}

// Shutdown closes every subscriber channel. Further Subscribe calls return
// already-closed subscriptions.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for lotID, room := range h.rooms {
		for sub := range room {
			close(sub.ch)
		}
		delete(h.rooms, lotID)
	}
}
