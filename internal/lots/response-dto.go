package lots

import (
	"parkwise/internal/vehicles"
)

// PaginatedLots wraps a lot listing with pagination metadata
type PaginatedLots struct {
	Lots       []Lot `json:"lots"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// LotDetailResponse is a lot plus live availability counts
type LotDetailResponse struct {
	Lot          Lot                    `json:"lot"`
	TotalSlots   int                    `json:"total_slots"`
	Availability map[vehicles.Class]int `json:"availability"`
}

// QuoteResponse is a price estimate for a parking window
type QuoteResponse struct {
	LotID            string  `json:"lot_id"`
	VehicleClass     string  `json:"vehicle_class"`
	Start            string  `json:"start"`
	End              string  `json:"end"`
	BilledHours      int     `json:"billed_hours"`
	BaseRatePerHour  int64   `json:"base_rate_per_hour"`
	TimeMultiplier   float64 `json:"time_multiplier"`
	DemandMultiplier float64 `json:"demand_multiplier"`
	QualityModifier  float64 `json:"quality_modifier"`
	Total            int64   `json:"total"`
}
