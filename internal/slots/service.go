package slots

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"parkwise/internal/realtime"
	"parkwise/internal/shared/apperrors"
	"parkwise/internal/vehicles"
	"parkwise/pkg/logger"
)

// Service exposes the administrative and read-side slot operations. All
// booking-driven transitions stay on the Store; this layer never bypasses it.
type Service interface {
	ListSlots(ctx context.Context, lotID string) ([]Slot, error)
	GetSlot(ctx context.Context, lotID, slotID string) (*Slot, error)
	AddSlots(ctx context.Context, lotID string, req AddSlotsRequest) ([]Slot, error)
	RemoveSlot(ctx context.Context, lotID, slotID string) error
	SetMaintenance(ctx context.Context, lotID, slotID string, enabled bool) (*Slot, error)
}

type service struct {
	store  Store
	events realtime.Publisher
	log    *logger.Logger
}

func NewService(store Store, events realtime.Publisher) Service {
	return &service{
		store:  store,
		events: events,
		log:    logger.GetDefault(),
	}
}

func (s *service) ListSlots(ctx context.Context, lotID string) ([]Slot, error) {
	id, err := uuid.Parse(lotID)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}
	return s.store.ListByLot(ctx, id)
}

func (s *service) GetSlot(ctx context.Context, lotID, slotID string) (*Slot, error) {
	lid, sid, err := parseIDs(lotID, slotID)
	if err != nil {
		return nil, err
	}
	return s.store.GetSlot(ctx, lid, sid)
}

func (s *service) AddSlots(ctx context.Context, lotID string, req AddSlotsRequest) ([]Slot, error) {
	id, err := uuid.Parse(lotID)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	newSlots := make([]Slot, 0, len(req.Slots))
	for _, item := range req.Slots {
		class := vehicles.Class(item.VehicleClass)
		if class == "" {
			class = vehicles.ClassAny
		}
		if !class.IsValid() {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVehicleClass, item.VehicleClass)
		}
		slot := Slot{
			ID:           uuid.New(),
			Identifier:   item.Identifier,
			Status:       StatusAvailable,
			VehicleClass: class,
		}
		if item.SensorID != "" {
			sensorID := item.SensorID
			slot.SensorID = &sensorID
		}
		newSlots = append(newSlots, slot)
	}

	if err := s.store.CreateSlots(ctx, id, newSlots); err != nil {
		return nil, fmt.Errorf("failed to create slots: %w", err)
	}
	return newSlots, nil
}

func (s *service) RemoveSlot(ctx context.Context, lotID, slotID string) error {
	lid, sid, err := parseIDs(lotID, slotID)
	if err != nil {
		return err
	}
	return s.store.DeleteSlot(ctx, lid, sid)
}

func (s *service) SetMaintenance(ctx context.Context, lotID, slotID string, enabled bool) (*Slot, error) {
	lid, sid, err := parseIDs(lotID, slotID)
	if err != nil {
		return nil, err
	}

	slot, err := s.store.SetMaintenance(ctx, lid, sid, enabled)
	if err != nil {
		return nil, err
	}

	s.log.LogSlotStatusChange(ctx, lotID, slot.Identifier, string(slot.Status))
	if s.events != nil {
		s.events.SlotStatusChanged(lid, slot.ID, slot.Identifier, string(slot.Status), nil)
	}
	return slot, nil
}

func parseIDs(lotID, slotID string) (uuid.UUID, uuid.UUID, error) {
	lid, err := uuid.Parse(lotID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid lot ID: %w", err)
	}
	sid, err := uuid.Parse(slotID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid slot ID: %w", err)
	}
	return lid, sid, nil
}
