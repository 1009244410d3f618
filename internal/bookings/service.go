package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"parkwise/internal/lots"
	"parkwise/internal/pricing"
	"parkwise/internal/realtime"
	"parkwise/internal/shared/apperrors"
	"parkwise/internal/shared/config"
	"parkwise/internal/slots"
	"parkwise/internal/vehicles"
	"parkwise/pkg/logger"
)

// checkInEarlyGrace is how early a vehicle may check in before the reserved
// start time.
const checkInEarlyGrace = 15 * time.Minute

// LotService is the slice of the lots service the booking flow needs
// (narrowed for testability).
type LotService interface {
	PricingSnapshot(ctx context.Context, lotID uuid.UUID) (pricing.LotSnapshot, *lots.Lot, error)
}

// SlotResolver resolves slot identifiers ahead of the reservation
// transaction (narrowed from slots.Store for testability).
type SlotResolver interface {
	GetSlotByIdentifier(ctx context.Context, lotID uuid.UUID, identifier string) (*slots.Slot, error)
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error)

	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error)
	ForceCancel(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	CheckIn(ctx context.Context, bookingID, userID uuid.UUID, asAdmin bool) (*Booking, error)
	CheckOut(ctx context.Context, bookingID, userID uuid.UUID, asAdmin bool) (*Booking, error)

	// Payment operations
	ConfirmPayment(ctx context.Context, bookingID, userID uuid.UUID, req ConfirmPaymentRequest) (*PaymentInfo, error)

	// HasCompletedBooking reports whether the user ever finished a stay at
	// the lot. The reviews module gates on it.
	HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error)

	// Sweeper entry points; see jobs.go.
	ProcessNoShows(ctx context.Context, batchSize int) (processed, failures int)
	ProcessOverdueCheckouts(ctx context.Context, batchSize int) (processed, failures int)
}

// service implements the Service interface
type service struct {
	repo         Repository
	lotService   LotService
	slotResolver SlotResolver
	events       realtime.Publisher
	rules        config.BookingConfig
	log          *logger.Logger
	now          func() time.Time
}

// NewService creates a new booking service instance
func NewService(repo Repository, lotService LotService, slotResolver SlotResolver, events realtime.Publisher, rules config.BookingConfig) Service {
	return &service{
		repo:         repo,
		lotService:   lotService,
		slotResolver: slotResolver,
		events:       events,
		rules:        rules,
		log:          logger.GetDefault(),
		now:          time.Now,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	class := vehicles.Class(req.VehicleClass)
	if !class.IsBookable() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVehicleClass, req.VehicleClass)
	}

	now := s.now()
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end must be after start", apperrors.ErrInvalidTimeWindow)
	}
	if req.StartTime.Before(now.Add(-5 * time.Minute)) {
		return nil, fmt.Errorf("%w: start is in the past", apperrors.ErrInvalidTimeWindow)
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	snapshot, lot, err := s.lotService.PricingSnapshot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot.Status != lots.LotStatusActive {
		return nil, fmt.Errorf("%w: lot is %s", apperrors.ErrSlotUnavailable, lot.Status)
	}
	if !lot.IsOpenAt(req.StartTime) {
		return nil, fmt.Errorf("%w: lot is closed at the requested start time", apperrors.ErrInvalidTimeWindow)
	}

	slot, err := s.slotResolver.GetSlotByIdentifier(ctx, lotID, req.SlotIdentifier)
	if err != nil {
		return nil, err
	}

	bookingRef, err := generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		ID:            uuid.New(),
		UserID:        userID,
		LotID:         lotID,
		SlotID:        slot.ID,
		VehicleClass:  class,
		VehicleNumber: req.VehicleNumber,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		BookingRef:    bookingRef,
	}

	if err := s.repo.CreateReservation(ctx, booking, snapshot); err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), lotID.String(), booking.SlotIdentifier, userID.String())
	if s.events != nil {
		s.events.SlotStatusChanged(lotID, slot.ID, booking.SlotIdentifier, string(slots.StatusReserved), &booking.ID)
	}

	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !booking.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperrors.ErrUnauthorized)
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return paginate(bookings, total, query), nil
}

func (s *service) GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.GetAllBookings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return paginate(bookings, total, query), nil
}

func (s *service) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperrors.ErrUnauthorized)
	}

	// Users may cancel only before check-in and before the window starts;
	// later cancellation is an admin force-cancel.
	if booking.Status != StatusReserved {
		return nil, fmt.Errorf("%w: booking already %s", apperrors.ErrConflict, booking.Status)
	}
	if !s.now().Before(booking.StartTime) {
		return nil, fmt.Errorf("%w: booking window already started", apperrors.ErrConflict)
	}

	return s.cancel(ctx, bookingID, StatusCancelled)
}

func (s *service) ForceCancel(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.cancel(ctx, bookingID, StatusCancelled)
}

func (s *service) cancel(ctx context.Context, bookingID uuid.UUID, to Status) (*Booking, error) {
	result, err := s.repo.Cancel(ctx, bookingID, to, s.now())
	if err != nil {
		return nil, err
	}

	s.log.LogBookingTransition(ctx, bookingID.String(), string(result.From), string(to))
	s.publishRelease(result)

	return result.Booking, nil
}

// CheckIn records arrival. Drivers check in their own bookings; gate
// hardware and staff call it with asAdmin set and may check in any booking.
func (s *service) CheckIn(ctx context.Context, bookingID, userID uuid.UUID, asAdmin bool) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !asAdmin && !booking.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperrors.ErrUnauthorized)
	}

	now := s.now()
	if now.Before(booking.StartTime.Add(-checkInEarlyGrace)) {
		return nil, fmt.Errorf("%w: too early to check in", apperrors.ErrConflict)
	}
	if !now.Before(booking.EndTime) {
		return nil, fmt.Errorf("%w: booking window already ended", apperrors.ErrConflict)
	}

	result, err := s.repo.CheckIn(ctx, bookingID, now)
	if err != nil {
		return nil, err
	}

	s.log.LogBookingTransition(ctx, bookingID.String(), string(StatusReserved), string(StatusActive))
	if s.events != nil && result.Slot != nil {
		s.events.SlotStatusChanged(result.Booking.LotID, result.Slot.ID, result.Slot.Identifier,
			string(slots.StatusOccupied), &result.Booking.ID)
	}

	return result.Booking, nil
}

func (s *service) CheckOut(ctx context.Context, bookingID, userID uuid.UUID, asAdmin bool) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !asAdmin && !booking.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperrors.ErrUnauthorized)
	}

	result, err := s.repo.Complete(ctx, bookingID, s.now(), settleActualStay)
	if err != nil {
		return nil, err
	}

	s.log.LogBookingTransition(ctx, bookingID.String(), string(StatusActive), string(StatusCompleted))
	s.publishRelease(result)

	return result.Booking, nil
}

// settleActualStay reprices a completed booking for the hours actually spent
// in the slot. Surge factors from the reservation quote do not carry over.
func settleActualStay(b *Booking, checkOut time.Time) (int64, pricing.Breakdown) {
	start := b.StartTime
	if b.CheckInTime != nil {
		start = *b.CheckInTime
	}

	total, hours := pricing.Settle(b.PriceDetails.BaseRatePerHour, start, checkOut)
	breakdown := pricing.Breakdown{
		BaseRatePerHour:  b.PriceDetails.BaseRatePerHour,
		BilledHours:      hours,
		TimeMultiplier:   1.0,
		DemandMultiplier: 1.0,
		QualityModifier:  1.0,
		Total:            total,
	}
	return total, breakdown
}

func (s *service) ConfirmPayment(ctx context.Context, bookingID, userID uuid.UUID, req ConfirmPaymentRequest) (*PaymentInfo, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperrors.ErrUnauthorized)
	}
	if booking.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: booking is not completed yet", apperrors.ErrConflict)
	}

	for _, p := range booking.Payments {
		if p.Status == "COMPLETED" {
			return nil, fmt.Errorf("%w: booking already paid", apperrors.ErrConflict)
		}
	}

	payment := &Payment{
		ID:            uuid.New(),
		BookingID:     booking.ID,
		Amount:        booking.TotalPrice,
		Currency:      "VND",
		Status:        "PENDING",
		PaymentMethod: req.PaymentMethod,
		TransactionID: fmt.Sprintf("TXN-%s", uuid.New().String()[:13]),
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	// Payment capture is out of band; the record flips straight to
	// COMPLETED here and a gateway integration would hook in instead.
	processedAt := s.now()
	if err := s.repo.UpdatePaymentStatus(ctx, payment.ID, "COMPLETED", &processedAt, ""); err != nil {
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}

	return &PaymentInfo{
		PaymentID:     payment.ID.String(),
		BookingID:     booking.ID.String(),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Status:        "COMPLETED",
		PaymentMethod: payment.PaymentMethod,
		TransactionID: payment.TransactionID,
	}, nil
}

func (s *service) HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error) {
	return s.repo.HasCompletedBooking(ctx, userID, lotID)
}

// ProcessNoShows expires reserved bookings whose start time passed the grace
// window. Each booking fails or succeeds on its own; one bad row never
// stalls the sweep.
func (s *service) ProcessNoShows(ctx context.Context, batchSize int) (processed, failures int) {
	cutoff := s.now().Add(-s.rules.NoShowGrace)

	expired, err := s.repo.FindExpiredReserved(ctx, cutoff, batchSize)
	if err != nil {
		s.log.Error("failed to scan for expired reservations", "error", err)
		return 0, 1
	}

	for _, booking := range expired {
		result, err := s.repo.Cancel(ctx, booking.ID, StatusNoShow, s.now())
		if err != nil {
			s.log.Error("failed to expire reservation", "booking_id", booking.ID.String(), "error", err)
			failures++
			continue
		}
		s.log.LogBookingTransition(ctx, booking.ID.String(), string(StatusReserved), string(StatusNoShow))
		s.publishRelease(result)
		processed++
	}
	return processed, failures
}

// ProcessOverdueCheckouts force-completes active bookings that ran past
// their end time plus the overstay grace. The charge stays at the reserved
// quote; the checkout time records the scheduled end.
func (s *service) ProcessOverdueCheckouts(ctx context.Context, batchSize int) (processed, failures int) {
	cutoff := s.now().Add(-s.rules.OverstayGrace)

	overdue, err := s.repo.FindOverdueActive(ctx, cutoff, batchSize)
	if err != nil {
		s.log.Error("failed to scan for overdue bookings", "error", err)
		return 0, 1
	}

	for _, booking := range overdue {
		result, err := s.repo.Complete(ctx, booking.ID, booking.EndTime, nil)
		if err != nil {
			s.log.Error("failed to auto-checkout booking", "booking_id", booking.ID.String(), "error", err)
			failures++
			continue
		}
		s.log.LogBookingTransition(ctx, booking.ID.String(), string(StatusActive), string(StatusCompleted))
		s.publishRelease(result)
		processed++
	}
	return processed, failures
}

func (s *service) publishRelease(result *TransitionResult) {
	if s.events == nil || result.Slot == nil || !result.Released {
		return
	}
	s.events.SlotStatusChanged(result.Booking.LotID, result.Slot.ID, result.Slot.Identifier,
		string(slots.StatusAvailable), nil)
}

func paginate(bookings []Booking, total int64, query BookingListQuery) *PaginatedBookings {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	totalPages := int((total + int64(query.Limit) - 1) / int64(query.Limit))
	return &PaginatedBookings{
		Bookings:   bookings,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}
}

// generateBookingReference generates a unique booking reference
func generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	// Generate 6 random uppercase letters
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("PRK-%s-%s", timestamp, string(randomPart)), nil
}
