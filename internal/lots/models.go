package lots

import (
	"time"

	"github.com/google/uuid"

	"parkwise/internal/vehicles"
)

type LotStatus string

const (
	LotStatusActive      LotStatus = "ACTIVE"
	LotStatusFull        LotStatus = "FULL"
	LotStatusMaintenance LotStatus = "MAINTENANCE"
	LotStatusClosed      LotStatus = "CLOSED"
)

func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusFull, LotStatusMaintenance, LotStatusClosed:
		return true
	}
	return false
}

type Lot struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name    string    `gorm:"uniqueIndex;not null" json:"name"`
	Address string    `gorm:"not null" json:"address"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Opening hours as hour-of-day; OpenHour == CloseHour means 24/7.
	OpenHour  int `gorm:"default:0" json:"open_hour"`
	CloseHour int `gorm:"default:0" json:"close_hour"`

	Status LotStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`

	// Aggregates maintained by the reviews module.
	Rating     float64 `gorm:"default:0" json:"rating"`
	NumReviews int     `gorm:"default:0" json:"num_reviews"`

	PricingTiers []PricingTier `gorm:"foreignKey:LotID" json:"pricing_tiers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lot) TableName() string {
	return "lots"
}

// PricingTier is the base hourly rate a lot charges for one vehicle class.
type PricingTier struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LotID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_pricing_lot_class" json:"lot_id"`
	VehicleClass vehicles.Class `gorm:"type:varchar(20);not null;uniqueIndex:idx_pricing_lot_class" json:"vehicle_class"`

	// PricePerHour is in the smallest currency unit.
	PricePerHour int64 `gorm:"not null" json:"price_per_hour"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PricingTier) TableName() string {
	return "pricing_tiers"
}

// EffectiveStatus derives the status reported to clients. An active lot
// with every slot taken reads as FULL; the stored status is untouched so
// the lot flips back as soon as a slot frees up.
func (l *Lot) EffectiveStatus(available, total int) LotStatus {
	if l.Status == LotStatusActive && total > 0 && available == 0 {
		return LotStatusFull
	}
	return l.Status
}

// IsOpenAt reports whether the lot accepts arrivals at the given time.
func (l *Lot) IsOpenAt(t time.Time) bool {
	if l.OpenHour == l.CloseHour {
		return true
	}
	h := t.Hour()
	if l.OpenHour < l.CloseHour {
		return h >= l.OpenHour && h < l.CloseHour
	}
	// Overnight window, e.g. 22-06.
	return h >= l.OpenHour || h < l.CloseHour
}
