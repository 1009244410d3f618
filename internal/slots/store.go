package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkwise/internal/shared/apperrors"
	"parkwise/internal/vehicles"
)

// Store owns all slot mutation. Every state change goes through these
// guarded operations so the slot/booking pairing can never drift; ad hoc
// updates against the slots table are off limits.
//
// The Tx-suffixed methods run inside a caller-provided transaction so a slot
// change commits atomically with its paired booking change.
type Store interface {
	GetSlot(ctx context.Context, lotID, slotID uuid.UUID) (*Slot, error)
	GetSlotByIdentifier(ctx context.Context, lotID uuid.UUID, identifier string) (*Slot, error)
	ListByLot(ctx context.Context, lotID uuid.UUID) ([]Slot, error)
	CountByLotAndStatus(ctx context.Context, lotID uuid.UUID, status Status) (int64, error)
	AvailabilityByClass(ctx context.Context, lotID uuid.UUID) (map[vehicles.Class]int, error)

	CreateSlots(ctx context.Context, lotID uuid.UUID, slots []Slot) error
	DeleteSlot(ctx context.Context, lotID, slotID uuid.UUID) error
	SetMaintenance(ctx context.Context, lotID, slotID uuid.UUID, enabled bool) (*Slot, error)

	TryReserveTx(tx *gorm.DB, lotID, slotID, bookingID uuid.UUID, class vehicles.Class) (*Slot, error)
	MarkOccupiedTx(tx *gorm.DB, lotID, slotID, bookingID uuid.UUID) (*Slot, error)
	ReleaseTx(tx *gorm.DB, lotID, slotID, expectedBookingID uuid.UUID) (*Slot, bool, error)
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) GetSlot(ctx context.Context, lotID, slotID uuid.UUID) (*Slot, error) {
	var slot Slot
	err := s.db.WithContext(ctx).
		Where("id = ? AND lot_id = ?", slotID, lotID).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("slot", slotID.String())
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (s *store) GetSlotByIdentifier(ctx context.Context, lotID uuid.UUID, identifier string) (*Slot, error) {
	var slot Slot
	err := s.db.WithContext(ctx).
		Where("lot_id = ? AND identifier = ?", lotID, identifier).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("slot", identifier)
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (s *store) ListByLot(ctx context.Context, lotID uuid.UUID) ([]Slot, error) {
	var out []Slot
	err := s.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("identifier ASC").
		Find(&out).Error
	return out, err
}

func (s *store) CountByLotAndStatus(ctx context.Context, lotID uuid.UUID, status Status) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&Slot{}).
		Where("lot_id = ? AND status = ?", lotID, status).
		Count(&n).Error
	return n, err
}

func (s *store) AvailabilityByClass(ctx context.Context, lotID uuid.UUID) (map[vehicles.Class]int, error) {
	var rows []struct {
		VehicleClass vehicles.Class
		Count        int
	}
	err := s.db.WithContext(ctx).
		Model(&Slot{}).
		Select("vehicle_class, COUNT(*) as count").
		Where("lot_id = ? AND status = ?", lotID, StatusAvailable).
		Group("vehicle_class").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[vehicles.Class]int, len(rows))
	for _, r := range rows {
		out[r.VehicleClass] = r.Count
	}
	return out, nil
}

func (s *store) CreateSlots(ctx context.Context, lotID uuid.UUID, slots []Slot) error {
	for i := range slots {
		slots[i].LotID = lotID
		if slots[i].Status == "" {
			slots[i].Status = StatusAvailable
		}
		if slots[i].VehicleClass == "" {
			slots[i].VehicleClass = vehicles.ClassAny
		}
	}
	return s.db.WithContext(ctx).Create(&slots).Error
}

func (s *store) DeleteSlot(ctx context.Context, lotID, slotID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, lotID, slotID)
		if err != nil {
			return err
		}
		if slot.Status == StatusReserved || slot.Status == StatusOccupied {
			return fmt.Errorf("%w: slot %s is in use", apperrors.ErrConflict, slot.Identifier)
		}
		return tx.Delete(&Slot{}, "id = ?", slot.ID).Error
	})
}

func (s *store) SetMaintenance(ctx context.Context, lotID, slotID uuid.UUID, enabled bool) (*Slot, error) {
	var updated *Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := lockSlot(tx, lotID, slotID)
		if err != nil {
			return err
		}

		if enabled {
			if slot.Status == StatusOccupied || slot.Status == StatusReserved {
				return fmt.Errorf("%w: slot %s is in use", apperrors.ErrConflict, slot.Identifier)
			}
			slot.Status = StatusMaintenance
		} else {
			if slot.Status != StatusMaintenance {
				return fmt.Errorf("%w: slot %s is not under maintenance", apperrors.ErrConflict, slot.Identifier)
			}
			slot.Status = StatusAvailable
		}
		slot.CurrentBookingID = nil

		if err := tx.Save(slot).Error; err != nil {
			return err
		}
		updated = slot
		return nil
	})
	return updated, err
}

// TryReserveTx moves an available, class-compatible slot to RESERVED and
// points it at the booking. The row lock serializes concurrent reservation
// attempts on the same slot; the losers observe RESERVED and fail.
func (s *store) TryReserveTx(tx *gorm.DB, lotID, slotID, bookingID uuid.UUID, class vehicles.Class) (*Slot, error) {
	slot, err := lockSlot(tx, lotID, slotID)
	if err != nil {
		return nil, err
	}

	if slot.Status != StatusAvailable {
		return nil, fmt.Errorf("%w: slot %s is %s", apperrors.ErrSlotUnavailable, slot.Identifier, slot.Status)
	}
	if !slot.VehicleClass.Accepts(class) {
		return nil, fmt.Errorf("%w: slot %s accepts %s, requested %s",
			apperrors.ErrVehicleClassMismatch, slot.Identifier, slot.VehicleClass, class)
	}

	slot.Status = StatusReserved
	slot.CurrentBookingID = &bookingID
	if err := tx.Save(slot).Error; err != nil {
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}
	return slot, nil
}

// MarkOccupiedTx moves a reserved slot to OCCUPIED. The back-reference must
// still match the booking checking in.
func (s *store) MarkOccupiedTx(tx *gorm.DB, lotID, slotID, bookingID uuid.UUID) (*Slot, error) {
	slot, err := lockSlot(tx, lotID, slotID)
	if err != nil {
		return nil, err
	}

	if slot.Status != StatusReserved || !slot.HeldBy(bookingID) {
		return nil, fmt.Errorf("%w: slot %s is not reserved by booking %s",
			apperrors.ErrConflict, slot.Identifier, bookingID)
	}

	slot.Status = StatusOccupied
	if err := tx.Save(slot).Error; err != nil {
		return nil, fmt.Errorf("failed to occupy slot: %w", err)
	}
	return slot, nil
}

// ReleaseTx frees a slot, but only while the back-reference still matches
// expectedBookingID. A stale release (the slot was reassigned since) is a
// no-op: it returns released=false and leaves the current holder untouched.
func (s *store) ReleaseTx(tx *gorm.DB, lotID, slotID, expectedBookingID uuid.UUID) (*Slot, bool, error) {
	slot, err := lockSlot(tx, lotID, slotID)
	if err != nil {
		return nil, false, err
	}

	if !slot.HeldBy(expectedBookingID) {
		return slot, false, nil
	}

	slot.Status = StatusAvailable
	slot.CurrentBookingID = nil
	if err := tx.Save(slot).Error; err != nil {
		return nil, false, fmt.Errorf("failed to release slot: %w", err)
	}
	return slot, true, nil
}

// lockSlot fetches the slot row under FOR UPDATE so guard checks and the
// following write form one serialized unit.
func lockSlot(tx *gorm.DB, lotID, slotID uuid.UUID) (*Slot, error) {
	var slot Slot
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND lot_id = ?", slotID, lotID).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("slot", slotID.String())
		}
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	return &slot, nil
}
