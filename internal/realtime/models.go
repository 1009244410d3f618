package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is anything the hub routes into a lot's room.
type Event interface {
	Room() uuid.UUID
}

// SlotEvent is published on every slot status change.
type SlotEvent struct {
	LotID      uuid.UUID  `json:"lot_id"`
	SlotID     uuid.UUID  `json:"slot_id"`
	Identifier string     `json:"identifier"`
	Status     string     `json:"status"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// LotEvent carries a full-lot snapshot on lot-level changes (creation,
// deletion, metadata edits).
type LotEvent struct {
	LotID      uuid.UUID   `json:"lot_id"`
	Kind       string      `json:"kind"` // created, updated, deleted
	Snapshot   interface{} `json:"snapshot,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

const (
	LotEventCreated = "created"
	LotEventUpdated = "updated"
	LotEventDeleted = "deleted"
)

func (e SlotEvent) Room() uuid.UUID { return e.LotID }

func (e LotEvent) Room() uuid.UUID { return e.LotID }

func (e *SlotEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *LotEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
