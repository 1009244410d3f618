package pricing

import (
	"fmt"
	"math"
	"time"

	"parkwise/internal/shared/apperrors"
	"parkwise/internal/vehicles"
)

// LotSnapshot carries the pricing-relevant view of a lot at quote time.
// The quote is a pure function of this snapshot plus the requested window,
// so the caller decides what "now" means.
type LotSnapshot struct {
	// BaseRates maps vehicle class to the base price per hour, in the
	// smallest currency unit.
	BaseRates map[vehicles.Class]int64

	TotalSlots     int
	AvailableSlots int

	Rating     float64
	NumReviews int
}

// Breakdown records how a quote was assembled. Stored on the booking so the
// price at reservation time stays explainable.
type Breakdown struct {
	BaseRatePerHour  int64   `json:"base_rate_per_hour"`
	BilledHours      int     `json:"billed_hours"`
	TimeMultiplier   float64 `json:"time_multiplier"`
	DemandMultiplier float64 `json:"demand_multiplier"`
	QualityModifier  float64 `json:"quality_modifier"`
	Total            int64   `json:"total"`
}

const (
	peakMultiplier    = 1.2
	weekendMultiplier = 1.2

	highOccupancyMultiplier = 1.3
	midOccupancyMultiplier  = 1.1

	qualityBonus   = 1.1
	qualityPenalty = 0.9

	// roundingUnit is the smallest payable denomination; totals are rounded
	// to the nearest multiple.
	roundingUnit = 1000
)

// Quote computes the total price for parking a vehicle of the given class at
// the lot from start to end. Duration bills in whole hours, rounded up.
//
// Multiplier stacking rule: at most one factor per category applies and the
// chosen factors multiply together.
//   - time:    peak window (07-09, 17-19 at start time) beats weekend; both
//     are x1.2.
//   - demand:  occupancy above 80% is x1.3, above 50% is x1.1.
//   - quality: rating above 4.5 with more than 10 reviews is x1.1; rating
//     below 3 with more than 5 reviews is x0.9.
//
// Quote does no I/O; "now" semantics come entirely from the window endpoints.
func Quote(lot LotSnapshot, class vehicles.Class, start, end time.Time) (int64, Breakdown, error) {
	if !end.After(start) {
		return 0, Breakdown{}, fmt.Errorf("%w: end %s is not after start %s",
			apperrors.ErrInvalidTimeWindow, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	baseRate, ok := lot.BaseRates[class]
	if !ok {
		return 0, Breakdown{}, fmt.Errorf("%w: no pricing tier for %q",
			apperrors.ErrUnsupportedVehicleClass, class)
	}

	hours := BilledHours(start, end)

	b := Breakdown{
		BaseRatePerHour:  baseRate,
		BilledHours:      hours,
		TimeMultiplier:   timeMultiplier(start),
		DemandMultiplier: demandMultiplier(lot.TotalSlots, lot.AvailableSlots),
		QualityModifier:  qualityModifier(lot.Rating, lot.NumReviews),
	}

	raw := float64(baseRate) * float64(hours) * b.TimeMultiplier * b.DemandMultiplier * b.QualityModifier
	b.Total = roundToUnit(raw)

	return b.Total, b, nil
}

// BilledHours converts an elapsed window to whole billed hours, rounding up.
// A one-minute stay bills a full hour.
func BilledHours(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()))
}

func timeMultiplier(start time.Time) float64 {
	hour := start.Hour()
	if (hour >= 7 && hour < 9) || (hour >= 17 && hour < 19) {
		return peakMultiplier
	}
	if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return weekendMultiplier
	}
	return 1.0
}

func demandMultiplier(total, available int) float64 {
	if total <= 0 {
		return 1.0
	}
	occupancy := float64(total-available) / float64(total)
	switch {
	case occupancy > 0.8:
		return highOccupancyMultiplier
	case occupancy > 0.5:
		return midOccupancyMultiplier
	default:
		return 1.0
	}
}

func qualityModifier(rating float64, numReviews int) float64 {
	if rating > 4.5 && numReviews > 10 {
		return qualityBonus
	}
	if rating > 0 && rating < 3 && numReviews > 5 {
		return qualityPenalty
	}
	return 1.0
}

func roundToUnit(amount float64) int64 {
	return int64(math.Round(amount/roundingUnit)) * roundingUnit
}

// Settle computes the checkout charge: the hours actually used at the quoted
// base rate, rounded to the payable unit. Surge factors from the original
// quote do not carry into the settled amount.
func Settle(baseRatePerHour int64, start, end time.Time) (int64, int) {
	hours := BilledHours(start, end)
	if hours < 1 {
		hours = 1
	}
	return roundToUnit(float64(baseRatePerHour) * float64(hours)), hours
}
