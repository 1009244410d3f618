package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkwise/internal/lots"
	"parkwise/internal/pricing"
	"parkwise/internal/shared/apperrors"
	"parkwise/internal/shared/config"
	"parkwise/internal/slots"
	"parkwise/internal/vehicles"
)

// memRepo is a mutex-guarded in-memory Repository. It enforces the same
// guards as the database implementation: one holder per slot, transition
// graph checks, and stale-release protection.
type memRepo struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*Booking
	slotStatus map[uuid.UUID]slots.Status
	slotIdent  map[uuid.UUID]string
	slotHolder map[uuid.UUID]uuid.UUID
	payments   map[uuid.UUID]*Payment
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings:   make(map[uuid.UUID]*Booking),
		slotStatus: make(map[uuid.UUID]slots.Status),
		slotIdent:  make(map[uuid.UUID]string),
		slotHolder: make(map[uuid.UUID]uuid.UUID),
		payments:   make(map[uuid.UUID]*Payment),
	}
}

func (m *memRepo) addSlot(slotID uuid.UUID, identifier string) {
	m.slotStatus[slotID] = slots.StatusAvailable
	m.slotIdent[slotID] = identifier
}

func (m *memRepo) slotFor(b *Booking) *slots.Slot {
	holder := m.slotHolder[b.SlotID]
	slot := &slots.Slot{ID: b.SlotID, LotID: b.LotID, Identifier: b.SlotIdentifier, Status: m.slotStatus[b.SlotID]}
	if holder != uuid.Nil {
		h := holder
		slot.CurrentBookingID = &h
	}
	return slot
}

func (m *memRepo) CreateReservation(ctx context.Context, booking *Booking, snapshot pricing.LotSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slotStatus[booking.SlotID] != slots.StatusAvailable {
		return apperrors.ErrSlotUnavailable
	}
	booking.SlotIdentifier = m.slotIdent[booking.SlotID]

	price, breakdown, err := pricing.Quote(snapshot, booking.VehicleClass, booking.StartTime, booking.EndTime)
	if err != nil {
		return err
	}
	booking.TotalPrice = price
	booking.PriceDetails = breakdown
	booking.Status = StatusReserved

	m.slotStatus[booking.SlotID] = slots.StatusReserved
	m.slotHolder[booking.SlotID] = booking.ID
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *memRepo) CheckIn(ctx context.Context, id uuid.UUID, now time.Time) (*TransitionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", id.String())
	}
	if !b.Status.CanTransitionTo(StatusActive) {
		return nil, apperrors.InvalidTransition(string(b.Status), string(StatusActive))
	}
	if m.slotHolder[b.SlotID] != id {
		return nil, apperrors.ErrConflict
	}

	m.slotStatus[b.SlotID] = slots.StatusOccupied
	from := b.Status
	b.Status = StatusActive
	b.CheckInTime = &now
	return &TransitionResult{Booking: b, From: from, Slot: m.slotFor(b)}, nil
}

func (m *memRepo) Complete(ctx context.Context, id uuid.UUID, checkOut time.Time, reprice Repricer) (*TransitionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", id.String())
	}
	if !b.Status.CanTransitionTo(StatusCompleted) {
		return nil, apperrors.InvalidTransition(string(b.Status), string(StatusCompleted))
	}

	released := m.release(b)
	from := b.Status
	b.Status = StatusCompleted
	b.CheckOutTime = &checkOut
	if reprice != nil {
		b.TotalPrice, b.PriceDetails = reprice(b, checkOut)
	}
	return &TransitionResult{Booking: b, From: from, Slot: m.slotFor(b), Released: released}, nil
}

func (m *memRepo) Cancel(ctx context.Context, id uuid.UUID, to Status, now time.Time) (*TransitionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", id.String())
	}
	if !b.Status.CanTransitionTo(to) {
		return nil, apperrors.InvalidTransition(string(b.Status), string(to))
	}

	released := m.release(b)
	from := b.Status
	b.Status = to
	b.CancelledAt = &now
	return &TransitionResult{Booking: b, From: from, Slot: m.slotFor(b), Released: released}, nil
}

// release frees the slot only while this booking still holds it.
func (m *memRepo) release(b *Booking) bool {
	if m.slotHolder[b.SlotID] != b.ID {
		return false
	}
	m.slotStatus[b.SlotID] = slots.StatusAvailable
	delete(m.slotHolder, b.SlotID)
	return true
}

func (m *memRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", id.String())
	}
	copied := *b
	return &copied, nil
}

func (m *memRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.UserID == userID && b.LotID == lotID && b.Status == StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) FindExpiredReserved(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.Status == StatusReserved && b.StartTime.Before(cutoff) && len(out) < limit {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memRepo) FindOverdueActive(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.Status == StatusActive && b.EndTime.Before(cutoff) && len(out) < limit {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memRepo) CreatePayment(ctx context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *memRepo) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status string, processedAt *time.Time, failureReason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return apperrors.NotFound("payment", paymentID.String())
	}
	p.Status = status
	p.ProcessedAt = processedAt
	p.FailureReason = failureReason
	return nil
}

func (m *memRepo) GetPaymentsByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeLotService serves a fixed snapshot and lot.
type fakeLotService struct {
	snapshot pricing.LotSnapshot
	lot      *lots.Lot
}

func (f *fakeLotService) PricingSnapshot(ctx context.Context, lotID uuid.UUID) (pricing.LotSnapshot, *lots.Lot, error) {
	return f.snapshot, f.lot, nil
}

// fakeSlotResolver maps identifiers to slot IDs.
type fakeSlotResolver struct {
	slots map[string]*slots.Slot
}

func (f *fakeSlotResolver) GetSlotByIdentifier(ctx context.Context, lotID uuid.UUID, identifier string) (*slots.Slot, error) {
	slot, ok := f.slots[identifier]
	if !ok {
		return nil, apperrors.NotFound("slot", identifier)
	}
	return slot, nil
}

type fixture struct {
	svc    *service
	repo   *memRepo
	lotID  uuid.UUID
	slotID uuid.UUID
	userID uuid.UUID
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	lotID := uuid.New()
	slotID := uuid.New()
	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC) // Tuesday, off-peak

	repo := newMemRepo()
	repo.addSlot(slotID, "A-01")

	lotSvc := &fakeLotService{
		snapshot: pricing.LotSnapshot{
			BaseRates:      map[vehicles.Class]int64{vehicles.ClassCar4Seats: 10000},
			TotalSlots:     10,
			AvailableSlots: 10,
		},
		lot: &lots.Lot{ID: lotID, Status: lots.LotStatusActive},
	}
	resolver := &fakeSlotResolver{slots: map[string]*slots.Slot{
		"A-01": {ID: slotID, LotID: lotID, Identifier: "A-01", Status: slots.StatusAvailable, VehicleClass: vehicles.ClassAny},
	}}

	rules := config.BookingConfig{NoShowGrace: 15 * time.Minute, OverstayGrace: 0}
	svc := NewService(repo, lotSvc, resolver, nil, rules).(*service)
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:    svc,
		repo:   repo,
		lotID:  lotID,
		slotID: slotID,
		userID: uuid.New(),
		now:    now,
	}
}

func (f *fixture) request() CreateBookingRequest {
	return CreateBookingRequest{
		LotID:          f.lotID.String(),
		SlotIdentifier: "A-01",
		VehicleClass:   "car_4_seats",
		VehicleNumber:  "51H-123.45",
		StartTime:      f.now.Add(30 * time.Minute),
		EndTime:        f.now.Add(3 * time.Hour),
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.userID, f.request())
	require.NoError(t, err)

	assert.Equal(t, StatusReserved, booking.Status)
	assert.Equal(t, "A-01", booking.SlotIdentifier)
	assert.NotEmpty(t, booking.BookingRef)
	// 3 bookable hours at 10000/hr, no surge factors apply
	assert.Equal(t, int64(30000), booking.TotalPrice)
	assert.Equal(t, 3, booking.PriceDetails.BilledHours)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.VehicleClass = "any"
	_, err := f.svc.CreateBooking(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedVehicleClass)

	req = f.request()
	req.EndTime = req.StartTime
	_, err = f.svc.CreateBooking(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTimeWindow)

	req = f.request()
	req.StartTime = f.now.Add(-2 * time.Hour)
	_, err = f.svc.CreateBooking(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTimeWindow)
}

func TestCreateBookingRejectsInactiveLot(t *testing.T) {
	f := newFixture(t)
	f.svc.lotService.(*fakeLotService).lot.Status = lots.LotStatusClosed

	_, err := f.svc.CreateBooking(context.Background(), f.userID, f.request())
	assert.ErrorIs(t, err, apperrors.ErrSlotUnavailable)
}

func TestConcurrentReservationsSingleWinner(t *testing.T) {
	f := newFixture(t)

	const attempts = 32
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(context.Background(), uuid.New(), f.request())
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, apperrors.ErrSlotUnavailable)
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one reservation must win the slot")
	assert.Equal(t, attempts-1, lost)
}

func TestLifecycleHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	// Arrive a little late and check in.
	f.svc.now = func() time.Time { return f.now.Add(40 * time.Minute) }
	active, err := f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, active.Status)
	require.NotNil(t, active.CheckInTime)

	// Leave after 1h10m; settled charge bills 2 hours at the base rate.
	f.svc.now = func() time.Time { return f.now.Add(40*time.Minute + 70*time.Minute) }
	done, err := f.svc.CheckOut(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 2, done.PriceDetails.BilledHours)
	assert.Equal(t, int64(20000), done.TotalPrice)

	// The slot is free again.
	assert.Equal(t, slots.StatusAvailable, f.repo.slotStatus[f.slotID])

	ok, err := f.svc.HasCompletedBooking(ctx, f.userID, f.lotID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckInWindowGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	// Too early: more than the grace period before start.
	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// After the window ended.
	f.svc.now = func() time.Time { return f.now.Add(4 * time.Hour) }
	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCheckInOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	f.svc.now = func() time.Time { return f.now.Add(30 * time.Minute) }
	_, err = f.svc.CheckIn(ctx, booking.ID, uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAdminCheckInAndOutAnyBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	// Gate hardware authenticates as admin and drives other users' bookings.
	gateID := uuid.New()
	f.svc.now = func() time.Time { return f.now.Add(30 * time.Minute) }
	active, err := f.svc.CheckIn(ctx, booking.ID, gateID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, active.Status)

	f.svc.now = func() time.Time { return f.now.Add(2 * time.Hour) }
	done, err := f.svc.CheckOut(ctx, booking.ID, gateID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, slots.StatusAvailable, f.repo.slotStatus[f.slotID])
}

func TestDoubleCheckInRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	f.svc.now = func() time.Time { return f.now.Add(30 * time.Minute) }
	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCancelBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(ctx, booking.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, slots.StatusAvailable, f.repo.slotStatus[f.slotID])
}

func TestCancelAfterStartRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	f.svc.now = func() time.Time { return booking.StartTime.Add(time.Minute) }
	_, err = f.svc.CancelBooking(ctx, booking.ID, f.userID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Admin force-cancel has no cutoff.
	forced, err := f.svc.ForceCancel(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, forced.Status)
}

func TestForceCancelActiveBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	f.svc.now = func() time.Time { return booking.StartTime }
	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)

	// The user can no longer cancel an active booking.
	_, err = f.svc.CancelBooking(ctx, booking.ID, f.userID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Admin override cancels it and frees the slot.
	forced, err := f.svc.ForceCancel(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, forced.Status)
	assert.Equal(t, slots.StatusAvailable, f.repo.slotStatus[f.slotID])
}

func TestProcessNoShows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	// Within the grace window nothing happens.
	f.svc.now = func() time.Time { return booking.StartTime.Add(10 * time.Minute) }
	processed, failures := f.svc.ProcessNoShows(ctx, 100)
	assert.Zero(t, processed)
	assert.Zero(t, failures)

	// Past the grace window the booking expires and the slot frees up.
	f.svc.now = func() time.Time { return booking.StartTime.Add(20 * time.Minute) }
	processed, failures = f.svc.ProcessNoShows(ctx, 100)
	assert.Equal(t, 1, processed)
	assert.Zero(t, failures)

	after, err := f.svc.GetBooking(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, after.Status)
	assert.Equal(t, slots.StatusAvailable, f.repo.slotStatus[f.slotID])
}

func TestProcessOverdueCheckouts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	f.svc.now = func() time.Time { return booking.StartTime }
	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)

	quoted := booking.TotalPrice

	f.svc.now = func() time.Time { return booking.EndTime.Add(5 * time.Minute) }
	processed, failures := f.svc.ProcessOverdueCheckouts(ctx, 100)
	assert.Equal(t, 1, processed)
	assert.Zero(t, failures)

	after, err := f.svc.GetBooking(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, after.Status)
	require.NotNil(t, after.CheckOutTime)
	// Auto-checkout records the scheduled end and keeps the quoted charge.
	assert.Equal(t, booking.EndTime, *after.CheckOutTime)
	assert.Equal(t, quoted, after.TotalPrice)
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, f.request())
	require.NoError(t, err)

	// Payment before checkout is rejected.
	_, err = f.svc.ConfirmPayment(ctx, booking.ID, f.userID, ConfirmPaymentRequest{PaymentMethod: "CARD"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	f.svc.now = func() time.Time { return booking.StartTime }
	_, err = f.svc.CheckIn(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)
	f.svc.now = func() time.Time { return booking.StartTime.Add(time.Hour) }
	done, err := f.svc.CheckOut(ctx, booking.ID, f.userID, false)
	require.NoError(t, err)

	info, err := f.svc.ConfirmPayment(ctx, booking.ID, f.userID, ConfirmPaymentRequest{PaymentMethod: "CARD"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", info.Status)
	assert.Equal(t, done.TotalPrice, info.Amount)
	assert.NotEmpty(t, info.TransactionID)
}

func TestStaleReleaseDoesNotFreeReassignedSlot(t *testing.T) {
	f := newFixture(t)

	bookingID := uuid.New()
	otherID := uuid.New()
	booking := &Booking{
		ID:         bookingID,
		UserID:     f.userID,
		LotID:      f.lotID,
		SlotID:     f.slotID,
		Status:     StatusReserved,
		StartTime:  f.now.Add(-time.Hour),
		EndTime:    f.now.Add(time.Hour),
		BookingRef: "PRK-TEST-STALE1",
	}
	f.repo.bookings[bookingID] = booking

	// The slot has since been handed to another booking.
	f.repo.slotStatus[f.slotID] = slots.StatusReserved
	f.repo.slotHolder[f.slotID] = otherID

	result, err := f.repo.Cancel(context.Background(), bookingID, StatusCancelled, f.now)
	require.NoError(t, err)
	assert.False(t, result.Released)
	assert.Equal(t, slots.StatusReserved, f.repo.slotStatus[f.slotID])
	assert.Equal(t, otherID, f.repo.slotHolder[f.slotID])
}
