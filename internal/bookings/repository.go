package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkwise/internal/pricing"
	"parkwise/internal/shared/apperrors"
	"parkwise/internal/slots"
)

// Repricer computes the final charge for a booking at checkout time.
type Repricer func(b *Booking, checkOut time.Time) (int64, pricing.Breakdown)

// TransitionResult carries the state a lifecycle transition produced, so the
// service can publish events after the transaction commits.
type TransitionResult struct {
	Booking *Booking
	// From is the status the booking held before the transition.
	From Status
	Slot *slots.Slot
	// Released is false when the slot had already been handed to another
	// booking and the release was skipped.
	Released bool
}

type Repository interface {
	// CreateReservation atomically reserves the slot and persists the
	// booking. The price is computed inside the transaction from slot
	// counts taken under the same snapshot, so the demand factor matches
	// the allocation that produced it.
	CreateReservation(ctx context.Context, booking *Booking, snapshot pricing.LotSnapshot) error

	// Lifecycle transitions. Each runs in its own transaction, locks the
	// booking row, validates the transition and applies the paired slot
	// change through the slot store.
	CheckIn(ctx context.Context, id uuid.UUID, now time.Time) (*TransitionResult, error)
	Complete(ctx context.Context, id uuid.UUID, checkOut time.Time, reprice Repricer) (*TransitionResult, error)
	Cancel(ctx context.Context, id uuid.UUID, to Status, now time.Time) (*TransitionResult, error)

	// Queries
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error)

	// Sweeper scans
	FindExpiredReserved(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error)
	FindOverdueActive(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error)

	// Payments
	CreatePayment(ctx context.Context, payment *Payment) error
	UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status string, processedAt *time.Time, failureReason string) error
	GetPaymentsByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
}

type repository struct {
	db        *gorm.DB
	slotStore slots.Store
}

func NewRepository(db *gorm.DB, slotStore slots.Store) Repository {
	return &repository{db: db, slotStore: slotStore}
}

func (r *repository) CreateReservation(ctx context.Context, booking *Booking, snapshot pricing.LotSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := r.slotStore.TryReserveTx(tx, booking.LotID, booking.SlotID, booking.ID, booking.VehicleClass)
		if err != nil {
			return err
		}
		booking.SlotIdentifier = slot.Identifier

		// Count occupancy inside the transaction. The slot just reserved
		// is added back so the demand factor reflects the state the user
		// quoted against.
		var available, total int64
		if err := tx.Model(&slots.Slot{}).
			Where("lot_id = ? AND status = ?", booking.LotID, slots.StatusAvailable).
			Count(&available).Error; err != nil {
			return fmt.Errorf("failed to count available slots: %w", err)
		}
		if err := tx.Model(&slots.Slot{}).
			Where("lot_id = ?", booking.LotID).
			Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count slots: %w", err)
		}
		snapshot.AvailableSlots = int(available) + 1
		snapshot.TotalSlots = int(total)

		price, breakdown, err := pricing.Quote(snapshot, booking.VehicleClass, booking.StartTime, booking.EndTime)
		if err != nil {
			return err
		}
		booking.TotalPrice = price
		booking.PriceDetails = breakdown
		booking.Status = StatusReserved

		return tx.Create(booking).Error
	})
}

func (r *repository) CheckIn(ctx context.Context, id uuid.UUID, now time.Time) (*TransitionResult, error) {
	var result TransitionResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(StatusActive) {
			return apperrors.InvalidTransition(string(booking.Status), string(StatusActive))
		}

		slot, err := r.slotStore.MarkOccupiedTx(tx, booking.LotID, booking.SlotID, booking.ID)
		if err != nil {
			return err
		}

		from := booking.Status
		booking.Status = StatusActive
		booking.CheckInTime = &now
		if err := tx.Save(booking).Error; err != nil {
			return fmt.Errorf("failed to check in booking: %w", err)
		}

		result = TransitionResult{Booking: booking, From: from, Slot: slot, Released: false}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) Complete(ctx context.Context, id uuid.UUID, checkOut time.Time, reprice Repricer) (*TransitionResult, error) {
	var result TransitionResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(StatusCompleted) {
			return apperrors.InvalidTransition(string(booking.Status), string(StatusCompleted))
		}

		slot, released, err := r.slotStore.ReleaseTx(tx, booking.LotID, booking.SlotID, booking.ID)
		if err != nil {
			return err
		}

		from := booking.Status
		booking.Status = StatusCompleted
		booking.CheckOutTime = &checkOut
		if reprice != nil {
			booking.TotalPrice, booking.PriceDetails = reprice(booking, checkOut)
		}
		if err := tx.Save(booking).Error; err != nil {
			return fmt.Errorf("failed to complete booking: %w", err)
		}

		result = TransitionResult{Booking: booking, From: from, Slot: slot, Released: released}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, to Status, now time.Time) (*TransitionResult, error) {
	if to != StatusCancelled && to != StatusNoShow {
		return nil, fmt.Errorf("cancel cannot target status %s", to)
	}

	var result TransitionResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(to) {
			return apperrors.InvalidTransition(string(booking.Status), string(to))
		}

		slot, released, err := r.slotStore.ReleaseTx(tx, booking.LotID, booking.SlotID, booking.ID)
		if err != nil {
			return err
		}

		from := booking.Status
		booking.Status = to
		booking.CancelledAt = &now
		if err := tx.Save(booking).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		result = TransitionResult{Booking: booking, From: from, Slot: slot, Released: released}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking", id.String())
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)
	return r.listBookings(base, query)
}

func (r *repository) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{})
	return r.listBookings(base, query)
}

func (r *repository) listBookings(base *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	if query.Status != "" {
		base = base.Where("status = ?", query.Status)
	}
	if query.LotID != "" {
		base = base.Where("lot_id = ?", query.LotID)
	}

	if err := base.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := base.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ? AND lot_id = ? AND status = ?", userID, lotID, StatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindExpiredReserved(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_time < ?", StatusReserved, cutoff).
		Order("start_time ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) FindOverdueActive(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time < ?", StatusActive, cutoff).
		Order("end_time ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status string, processedAt *time.Time, failureReason string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}

	result := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ?", paymentID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("payment", paymentID.String())
	}
	return nil
}

func (r *repository) GetPaymentsByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// lockBooking fetches the booking row under FOR UPDATE so the transition
// guard and the write form one serialized unit.
func lockBooking(tx *gorm.DB, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking", id.String())
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return &booking, nil
}
