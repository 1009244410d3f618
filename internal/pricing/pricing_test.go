package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkwise/internal/shared/apperrors"
	"parkwise/internal/vehicles"
)

func quietLot(rate int64) LotSnapshot {
	return LotSnapshot{
		BaseRates:      map[vehicles.Class]int64{vehicles.ClassCar4Seats: rate},
		TotalSlots:     10,
		AvailableSlots: 10,
	}
}

// Tuesday 10:00, outside every surcharge window.
var calmStart = time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)

func TestQuote_CeilBilling(t *testing.T) {
	// 61 minutes at 10,000/hour bills 2 hours.
	total, b, err := Quote(quietLot(10000), vehicles.ClassCar4Seats, calmStart, calmStart.Add(61*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, b.BilledHours)
	assert.Equal(t, int64(20000), total)
}

func TestQuote_OneMinuteBillsFullHour(t *testing.T) {
	total, _, err := Quote(quietLot(15000), vehicles.ClassCar4Seats, calmStart, calmStart.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(15000), total)
}

func TestQuote_InvalidWindow(t *testing.T) {
	_, _, err := Quote(quietLot(10000), vehicles.ClassCar4Seats, calmStart, calmStart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTimeWindow)

	_, _, err = Quote(quietLot(10000), vehicles.ClassCar4Seats, calmStart, calmStart.Add(-time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTimeWindow)
}

func TestQuote_UnsupportedVehicleClass(t *testing.T) {
	_, _, err := Quote(quietLot(10000), vehicles.ClassSUV, calmStart, calmStart.Add(time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVehicleClass)
}

func TestQuote_PeakBeatsWeekend(t *testing.T) {
	// Saturday 08:00 is both peak and weekend; only one time factor applies.
	saturdayPeak := time.Date(2025, 9, 6, 8, 0, 0, 0, time.UTC)
	total, b, err := Quote(quietLot(10000), vehicles.ClassCar4Seats, saturdayPeak, saturdayPeak.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.2, b.TimeMultiplier)
	assert.Equal(t, int64(12000), total)
}

func TestQuote_WeekendSurcharge(t *testing.T) {
	saturdayNoon := time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)
	_, b, err := Quote(quietLot(10000), vehicles.ClassCar4Seats, saturdayNoon, saturdayNoon.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.2, b.TimeMultiplier)
}

func TestQuote_DemandTiers(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		available int
		want      float64
	}{
		{"empty lot", 10, 10, 1.0},
		{"half full", 10, 5, 1.0},
		{"above half", 10, 4, 1.1},
		{"above eighty percent", 10, 1, 1.3},
		{"no slots configured", 0, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := quietLot(10000)
			lot.TotalSlots = tt.total
			lot.AvailableSlots = tt.available
			_, b, err := Quote(lot, vehicles.ClassCar4Seats, calmStart, calmStart.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.DemandMultiplier)
		})
	}
}

func TestQuote_QualityModifier(t *testing.T) {
	lot := quietLot(10000)
	lot.Rating = 4.8
	lot.NumReviews = 11
	_, b, err := Quote(lot, vehicles.ClassCar4Seats, calmStart, calmStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.1, b.QualityModifier)

	lot.Rating = 2.5
	lot.NumReviews = 6
	_, b, err = Quote(lot, vehicles.ClassCar4Seats, calmStart, calmStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0.9, b.QualityModifier)

	// Too few reviews: no adjustment either way.
	lot.Rating = 4.9
	lot.NumReviews = 3
	_, b, err = Quote(lot, vehicles.ClassCar4Seats, calmStart, calmStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.QualityModifier)
}

func TestQuote_RoundsToThousand(t *testing.T) {
	// 3 hours x 11,111 x 1.1 demand = 36,666.3 -> 37,000.
	lot := quietLot(11111)
	lot.TotalSlots = 10
	lot.AvailableSlots = 4
	total, _, err := Quote(lot, vehicles.ClassCar4Seats, calmStart, calmStart.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(37000), total)
	assert.Zero(t, total%1000)
}

func TestBilledHours(t *testing.T) {
	assert.Equal(t, 1, BilledHours(calmStart, calmStart.Add(time.Minute)))
	assert.Equal(t, 1, BilledHours(calmStart, calmStart.Add(time.Hour)))
	assert.Equal(t, 2, BilledHours(calmStart, calmStart.Add(time.Hour+time.Second)))
	assert.Equal(t, 24, BilledHours(calmStart, calmStart.Add(23*time.Hour+30*time.Minute)))
}

func TestSettle(t *testing.T) {
	start := calmStart

	// 1h10m settles as 2 hours at the base rate only.
	total, hours := Settle(10000, start, start.Add(70*time.Minute))
	assert.Equal(t, 2, hours)
	assert.Equal(t, int64(20000), total)

	// Sub-hour stays bill a full hour.
	total, hours = Settle(10000, start, start.Add(5*time.Minute))
	assert.Equal(t, 1, hours)
	assert.Equal(t, int64(10000), total)

	// Rounds to the payable unit.
	total, _ = Settle(10500, start, start.Add(3*time.Hour))
	assert.Equal(t, int64(32000), total)
	assert.Zero(t, total%1000)
}
