package lots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"parkwise/internal/shared/apperrors"
	"parkwise/internal/slots"
	"parkwise/internal/vehicles"
)

type fakeRepo struct {
	Repository
	lots map[uuid.UUID]*Lot
}

func (f *fakeRepo) GetLotByID(ctx context.Context, id uuid.UUID) (*Lot, error) {
	lot, ok := f.lots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lot, nil
}

type fakeSlotStore struct {
	slots.Store
	counts map[slots.Status]int64
	avail  map[vehicles.Class]int
}

func (f *fakeSlotStore) CountByLotAndStatus(ctx context.Context, lotID uuid.UUID, status slots.Status) (int64, error) {
	return f.counts[status], nil
}

func (f *fakeSlotStore) AvailabilityByClass(ctx context.Context, lotID uuid.UUID) (map[vehicles.Class]int, error) {
	return f.avail, nil
}

func TestPricingSnapshot(t *testing.T) {
	lotID := uuid.New()
	repo := &fakeRepo{lots: map[uuid.UUID]*Lot{
		lotID: {
			ID:         lotID,
			Name:       "Central Garage",
			Rating:     4.7,
			NumReviews: 25,
			PricingTiers: []PricingTier{
				{VehicleClass: vehicles.ClassCar4Seats, PricePerHour: 10000},
				{VehicleClass: vehicles.ClassMotorbike, PricePerHour: 4000},
			},
		},
	}}
	store := &fakeSlotStore{counts: map[slots.Status]int64{
		slots.StatusAvailable:   3,
		slots.StatusReserved:    4,
		slots.StatusOccupied:    2,
		slots.StatusMaintenance: 1,
	}}

	svc := NewService(repo, store, nil, nil)

	snapshot, lot, err := svc.PricingSnapshot(context.Background(), lotID)
	require.NoError(t, err)
	require.NotNil(t, lot)

	assert.Equal(t, 10, snapshot.TotalSlots)
	assert.Equal(t, 3, snapshot.AvailableSlots)
	assert.Equal(t, 4.7, snapshot.Rating)
	assert.Equal(t, 25, snapshot.NumReviews)
	assert.Equal(t, int64(10000), snapshot.BaseRates[vehicles.ClassCar4Seats])
	assert.Equal(t, int64(4000), snapshot.BaseRates[vehicles.ClassMotorbike])
}

func TestPricingSnapshotUnknownLot(t *testing.T) {
	svc := NewService(&fakeRepo{lots: map[uuid.UUID]*Lot{}}, &fakeSlotStore{}, nil, nil)

	_, _, err := svc.PricingSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuoteRejectsUnbookableClass(t *testing.T) {
	svc := NewService(&fakeRepo{lots: map[uuid.UUID]*Lot{}}, &fakeSlotStore{}, nil, nil)

	now := time.Now()
	_, err := svc.Quote(context.Background(), uuid.New().String(), "any", now, now.Add(time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVehicleClass)
}

func TestBuildTiers(t *testing.T) {
	tiers, err := buildTiers([]TierRequest{
		{VehicleClass: "car_4_seats", PricePerHour: 10000},
		{VehicleClass: "motorbike", PricePerHour: 4000},
	})
	require.NoError(t, err)
	assert.Len(t, tiers, 2)

	_, err = buildTiers([]TierRequest{
		{VehicleClass: "car_4_seats", PricePerHour: 10000},
		{VehicleClass: "car_4_seats", PricePerHour: 12000},
	})
	assert.Error(t, err)

	_, err = buildTiers([]TierRequest{{VehicleClass: "hovercraft", PricePerHour: 1}})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVehicleClass)

	// "any" is a slot compatibility wildcard, not a priceable class
	_, err = buildTiers([]TierRequest{{VehicleClass: "any", PricePerHour: 1}})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVehicleClass)
}

func TestBuildSlotLayout(t *testing.T) {
	layout, err := buildSlotLayout([]SlotLayoutRequest{
		{VehicleClass: "car_4_seats", Count: 3, Prefix: "A"},
		{VehicleClass: "any", Count: 1, Prefix: "B"},
	})
	require.NoError(t, err)
	require.Len(t, layout, 4)

	assert.Equal(t, "A-01", layout[0].Identifier)
	assert.Equal(t, "A-03", layout[2].Identifier)
	assert.Equal(t, "B-01", layout[3].Identifier)
	assert.Equal(t, slots.StatusAvailable, layout[0].Status)
	assert.Equal(t, vehicles.ClassAny, layout[3].VehicleClass)

	_, err = buildSlotLayout([]SlotLayoutRequest{
		{VehicleClass: "car_4_seats", Count: 1, Prefix: "A"},
		{VehicleClass: "suv", Count: 1, Prefix: "A"},
	})
	assert.Error(t, err)
}

func TestGetLotDerivesFullStatus(t *testing.T) {
	lotID := uuid.New()
	repo := &fakeRepo{lots: map[uuid.UUID]*Lot{
		lotID: {ID: lotID, Name: "Packed Garage", Status: LotStatusActive},
	}}
	store := &fakeSlotStore{
		counts: map[slots.Status]int64{
			slots.StatusReserved: 6,
			slots.StatusOccupied: 4,
		},
		avail: map[vehicles.Class]int{},
	}

	svc := NewService(repo, store, nil, nil)

	detail, err := svc.GetLot(context.Background(), lotID.String())
	require.NoError(t, err)
	assert.Equal(t, LotStatusFull, detail.Lot.Status)
	assert.Equal(t, 10, detail.TotalSlots)

	// The stored record keeps ACTIVE; FULL is derived per response.
	assert.Equal(t, LotStatusActive, repo.lots[lotID].Status)

	// A freed slot flips the response back.
	store.counts[slots.StatusAvailable] = 1
	store.avail[vehicles.ClassCar4Seats] = 1
	detail, err = svc.GetLot(context.Background(), lotID.String())
	require.NoError(t, err)
	assert.Equal(t, LotStatusActive, detail.Lot.Status)
}

func TestLotEffectiveStatus(t *testing.T) {
	active := &Lot{Status: LotStatusActive}
	assert.Equal(t, LotStatusFull, active.EffectiveStatus(0, 10))
	assert.Equal(t, LotStatusActive, active.EffectiveStatus(3, 10))

	// An empty lot is not full, and non-active statuses win outright.
	assert.Equal(t, LotStatusActive, active.EffectiveStatus(0, 0))
	closed := &Lot{Status: LotStatusClosed}
	assert.Equal(t, LotStatusClosed, closed.EffectiveStatus(0, 10))
}

func TestLotIsOpenAt(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2025, 6, 2, hour, 30, 0, 0, time.UTC)
	}

	always := &Lot{OpenHour: 0, CloseHour: 0}
	assert.True(t, always.IsOpenAt(at(3)))

	day := &Lot{OpenHour: 6, CloseHour: 22}
	assert.True(t, day.IsOpenAt(at(6)))
	assert.True(t, day.IsOpenAt(at(21)))
	assert.False(t, day.IsOpenAt(at(22)))
	assert.False(t, day.IsOpenAt(at(3)))

	overnight := &Lot{OpenHour: 22, CloseHour: 6}
	assert.True(t, overnight.IsOpenAt(at(23)))
	assert.True(t, overnight.IsOpenAt(at(3)))
	assert.False(t, overnight.IsOpenAt(at(12)))
}
