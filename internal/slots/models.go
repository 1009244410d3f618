package slots

import (
	"time"

	"github.com/google/uuid"

	"parkwise/internal/vehicles"
)

// Status of a single parking slot.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusReserved    Status = "RESERVED"
	StatusOccupied    Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied, StatusMaintenance:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Slot is an individually addressable parking space. A slot belongs to
// exactly one lot; the identifier (e.g. "A-01") is unique within that lot.
type Slot struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LotID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slots_lot_identifier;index" json:"lot_id"`

	Identifier   string         `gorm:"not null;uniqueIndex:idx_slots_lot_identifier" json:"identifier"`
	Status       Status         `gorm:"type:varchar(20);not null;default:'AVAILABLE';check:status IN ('AVAILABLE','RESERVED','OCCUPIED','MAINTENANCE')" json:"status"`
	VehicleClass vehicles.Class `gorm:"type:varchar(20);not null;default:'any'" json:"vehicle_class"`

	// SensorID links the slot to an IoT occupancy sensor when one exists.
	SensorID *string `gorm:"type:varchar(64)" json:"sensor_id,omitempty"`

	// CurrentBookingID references the booking holding this slot. It is a
	// lookup relation, never ownership: non-nil iff status is RESERVED or
	// OCCUPIED.
	CurrentBookingID *uuid.UUID `gorm:"type:uuid;index" json:"current_booking_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Slot) TableName() string {
	return "slots"
}

// IsConsistent checks the slot's core invariant: a booking back-reference
// exists exactly when the slot is reserved or occupied.
func (s *Slot) IsConsistent() bool {
	held := s.Status == StatusReserved || s.Status == StatusOccupied
	return held == (s.CurrentBookingID != nil)
}

// HeldBy reports whether the slot is currently held by the given booking.
func (s *Slot) HeldBy(bookingID uuid.UUID) bool {
	return s.CurrentBookingID != nil && *s.CurrentBookingID == bookingID
}
