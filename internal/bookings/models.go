package bookings

import (
	"time"

	"github.com/google/uuid"

	"parkwise/internal/pricing"
	"parkwise/internal/vehicles"
)

// Booking defines the main booking structure
type Booking struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	LotID  uuid.UUID `gorm:"type:uuid;index;not null" json:"lot_id"`
	SlotID uuid.UUID `gorm:"type:uuid;index;not null" json:"slot_id"`

	// SlotIdentifier is denormalized so history survives slot deletion.
	SlotIdentifier string `gorm:"not null" json:"slot_identifier"`

	VehicleClass  vehicles.Class `gorm:"type:varchar(20);not null" json:"vehicle_class"`
	VehicleNumber string         `gorm:"type:varchar(20);not null" json:"vehicle_number"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null;index" json:"end_time"`

	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`

	// TotalPrice is in the smallest currency unit, quoted at reservation
	// and re-settled at checkout.
	TotalPrice   int64             `gorm:"not null" json:"total_price"`
	PriceDetails pricing.Breakdown `gorm:"serializer:json" json:"price_details"`

	Status      Status     `gorm:"type:varchar(20);check:status IN ('RESERVED', 'ACTIVE', 'COMPLETED', 'CANCELLED', 'NO_SHOW');default:'RESERVED'" json:"status"`
	BookingRef  string     `gorm:"unique;not null" json:"booking_ref"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;"`
}

// Payment defines the structure for payment tracking
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	Amount        int64      `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);default:'VND'" json:"currency"`
	Status        string     `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED');default:'PENDING'" json:"status"`
	PaymentMethod string     `gorm:"type:varchar(50)" json:"payment_method"`
	TransactionID string     `gorm:"unique" json:"transaction_id"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relationships
	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// IsOwnedBy reports whether the booking belongs to the given user.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}
