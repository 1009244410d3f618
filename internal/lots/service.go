package lots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parkwise/internal/pricing"
	"parkwise/internal/realtime"
	"parkwise/internal/shared/apperrors"
	"parkwise/internal/shared/constants"
	"parkwise/internal/slots"
	"parkwise/internal/vehicles"
	"parkwise/pkg/cache"
	"parkwise/pkg/logger"
)

type Service interface {
	CreateLot(ctx context.Context, req CreateLotRequest) (*Lot, error)
	GetLot(ctx context.Context, id string) (*LotDetailResponse, error)
	GetLots(ctx context.Context, filters LotFilters) (*PaginatedLots, error)
	UpdateLot(ctx context.Context, id string, req UpdateLotRequest) (*Lot, error)
	DeleteLot(ctx context.Context, id string) error

	// Quote prices a parking window without reserving anything.
	Quote(ctx context.Context, id string, vehicleClass string, start, end time.Time) (*QuoteResponse, error)

	// PricingSnapshot assembles the pricing view of a lot. The bookings
	// service calls this inside its reservation transaction.
	PricingSnapshot(ctx context.Context, lotID uuid.UUID) (pricing.LotSnapshot, *Lot, error)
}

type service struct {
	repo      Repository
	slotStore slots.Store
	cache     cache.Service
	events    realtime.Publisher
	log       *logger.Logger
}

func NewService(repo Repository, slotStore slots.Store, cacheSvc cache.Service, events realtime.Publisher) Service {
	return &service{
		repo:      repo,
		slotStore: slotStore,
		cache:     cacheSvc,
		events:    events,
		log:       logger.GetDefault(),
	}
}

func (s *service) CreateLot(ctx context.Context, req CreateLotRequest) (*Lot, error) {
	existing, err := s.repo.GetLotByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check lot name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: lot with name '%s' already exists", apperrors.ErrConflict, req.Name)
	}

	tiers, err := buildTiers(req.PricingTiers)
	if err != nil {
		return nil, err
	}

	lot := &Lot{
		ID:           uuid.New(),
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		OpenHour:     req.OpenHour,
		CloseHour:    req.CloseHour,
		Status:       LotStatusActive,
		PricingTiers: tiers,
	}

	if err := s.repo.CreateLot(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to create lot: %w", err)
	}

	if len(req.SlotLayout) > 0 {
		layout, err := buildSlotLayout(req.SlotLayout)
		if err != nil {
			return nil, err
		}
		if err := s.slotStore.CreateSlots(ctx, lot.ID, layout); err != nil {
			return nil, fmt.Errorf("failed to create slot layout: %w", err)
		}
	}

	s.invalidateLotCaches(ctx, lot.ID)
	if s.events != nil {
		s.events.LotChanged(lot.ID, "created", lot)
	}

	return lot, nil
}

func (s *service) GetLot(ctx context.Context, id string) (*LotDetailResponse, error) {
	lotID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	lot, err := s.getLotCached(ctx, lotID)
	if err != nil {
		return nil, err
	}

	availability, err := s.slotStore.AvailabilityByClass(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	total := 0
	for _, status := range []slots.Status{slots.StatusAvailable, slots.StatusReserved, slots.StatusOccupied, slots.StatusMaintenance} {
		n, err := s.slotStore.CountByLotAndStatus(ctx, lotID, status)
		if err != nil {
			return nil, fmt.Errorf("failed to count slots: %w", err)
		}
		total += int(n)
	}

	available := 0
	for _, n := range availability {
		available += n
	}

	detail := *lot
	detail.Status = lot.EffectiveStatus(available, total)

	return &LotDetailResponse{
		Lot:          detail,
		TotalSlots:   total,
		Availability: availability,
	}, nil
}

func (s *service) GetLots(ctx context.Context, filters LotFilters) (*PaginatedLots, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Status != "" && !LotStatus(filters.Status).IsValid() {
		return nil, fmt.Errorf("invalid lot status: %s", filters.Status)
	}

	cacheKey := constants.BuildLotListKey(filters.Page, filters.Limit, filters.Status)

	// Search results are not cached, listing pages are.
	if filters.Search == "" && s.cache != nil {
		var cached PaginatedLots
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	result, err := s.repo.GetLots(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	if filters.Search == "" && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, constants.TTL_LOT_LIST); err != nil {
			s.log.Warn("failed to cache lot listing", "error", err)
		}
	}

	return result, nil
}

func (s *service) UpdateLot(ctx context.Context, id string, req UpdateLotRequest) (*Lot, error) {
	lotID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.OpenHour != nil {
		updates["open_hour"] = *req.OpenHour
	}
	if req.CloseHour != nil {
		updates["close_hour"] = *req.CloseHour
	}
	if req.Status != nil {
		if !LotStatus(*req.Status).IsValid() {
			return nil, fmt.Errorf("invalid lot status: %s", *req.Status)
		}
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateLot(ctx, lotID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("lot", id)
			}
			return nil, fmt.Errorf("failed to update lot: %w", err)
		}
	}

	if len(req.PricingTiers) > 0 {
		tiers, err := buildTiers(req.PricingTiers)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplacePricingTiers(ctx, lotID, tiers); err != nil {
			return nil, fmt.Errorf("failed to update pricing tiers: %w", err)
		}
	}

	s.invalidateLotCaches(ctx, lotID)

	lot, err := s.repo.GetLotByID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lot: %w", err)
	}

	if s.events != nil {
		s.events.LotChanged(lotID, "updated", lot)
	}

	return lot, nil
}

func (s *service) DeleteLot(ctx context.Context, id string) error {
	lotID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid lot ID: %w", err)
	}

	// A lot with held slots cannot be removed.
	for _, status := range []slots.Status{slots.StatusReserved, slots.StatusOccupied} {
		n, err := s.slotStore.CountByLotAndStatus(ctx, lotID, status)
		if err != nil {
			return fmt.Errorf("failed to count slots: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: lot has %d slots in use", apperrors.ErrConflict, n)
		}
	}

	if err := s.repo.DeleteLot(ctx, lotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("lot", id)
		}
		return fmt.Errorf("failed to delete lot: %w", err)
	}

	s.invalidateLotCaches(ctx, lotID)
	if s.events != nil {
		s.events.LotChanged(lotID, "deleted", nil)
	}

	return nil
}

func (s *service) Quote(ctx context.Context, id string, vehicleClass string, start, end time.Time) (*QuoteResponse, error) {
	lotID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	class := vehicles.Class(vehicleClass)
	if !class.IsBookable() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVehicleClass, vehicleClass)
	}

	snapshot, _, err := s.PricingSnapshot(ctx, lotID)
	if err != nil {
		return nil, err
	}

	total, breakdown, err := pricing.Quote(snapshot, class, start, end)
	if err != nil {
		return nil, err
	}

	return &QuoteResponse{
		LotID:            id,
		VehicleClass:     vehicleClass,
		Start:            start.Format(time.RFC3339),
		End:              end.Format(time.RFC3339),
		BilledHours:      breakdown.BilledHours,
		BaseRatePerHour:  breakdown.BaseRatePerHour,
		TimeMultiplier:   breakdown.TimeMultiplier,
		DemandMultiplier: breakdown.DemandMultiplier,
		QualityModifier:  breakdown.QualityModifier,
		Total:            total,
	}, nil
}

func (s *service) PricingSnapshot(ctx context.Context, lotID uuid.UUID) (pricing.LotSnapshot, *Lot, error) {
	lot, err := s.repo.GetLotByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.LotSnapshot{}, nil, apperrors.NotFound("lot", lotID.String())
		}
		return pricing.LotSnapshot{}, nil, fmt.Errorf("failed to get lot: %w", err)
	}

	rates := make(map[vehicles.Class]int64, len(lot.PricingTiers))
	for _, tier := range lot.PricingTiers {
		rates[tier.VehicleClass] = tier.PricePerHour
	}

	available, err := s.slotStore.CountByLotAndStatus(ctx, lotID, slots.StatusAvailable)
	if err != nil {
		return pricing.LotSnapshot{}, nil, fmt.Errorf("failed to count available slots: %w", err)
	}

	total := int64(0)
	for _, status := range []slots.Status{slots.StatusAvailable, slots.StatusReserved, slots.StatusOccupied, slots.StatusMaintenance} {
		n, err := s.slotStore.CountByLotAndStatus(ctx, lotID, status)
		if err != nil {
			return pricing.LotSnapshot{}, nil, fmt.Errorf("failed to count slots: %w", err)
		}
		total += n
	}

	return pricing.LotSnapshot{
		BaseRates:      rates,
		TotalSlots:     int(total),
		AvailableSlots: int(available),
		Rating:         lot.Rating,
		NumReviews:     lot.NumReviews,
	}, lot, nil
}

func (s *service) getLotCached(ctx context.Context, lotID uuid.UUID) (*Lot, error) {
	cacheKey := constants.BuildLotDetailKey(lotID.String())

	if s.cache != nil {
		var cached Lot
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	lot, err := s.repo.GetLotByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("lot", lotID.String())
		}
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, lot, constants.TTL_LOT_DETAIL); err != nil {
			s.log.Warn("failed to cache lot", "lot_id", lotID.String(), "error", err)
		}
	}

	return lot, nil
}

func (s *service) invalidateLotCaches(ctx context.Context, lotID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_LOTS_ALL); err != nil {
		s.log.Warn("failed to invalidate lot caches", "lot_id", lotID.String(), "error", err)
	}
}

func buildTiers(reqs []TierRequest) ([]PricingTier, error) {
	seen := map[vehicles.Class]bool{}
	tiers := make([]PricingTier, 0, len(reqs))
	for _, t := range reqs {
		class := vehicles.Class(t.VehicleClass)
		if !class.IsBookable() {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVehicleClass, t.VehicleClass)
		}
		if seen[class] {
			return nil, fmt.Errorf("duplicate pricing tier for class %s", class)
		}
		seen[class] = true
		tiers = append(tiers, PricingTier{
			ID:           uuid.New(),
			VehicleClass: class,
			PricePerHour: t.PricePerHour,
		})
	}
	return tiers, nil
}

func buildSlotLayout(reqs []SlotLayoutRequest) ([]slots.Slot, error) {
	var out []slots.Slot
	seen := map[string]bool{}
	for _, layout := range reqs {
		class := vehicles.Class(layout.VehicleClass)
		if !class.IsValid() {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVehicleClass, layout.VehicleClass)
		}
		if seen[layout.Prefix] {
			return nil, fmt.Errorf("duplicate slot prefix %s", layout.Prefix)
		}
		seen[layout.Prefix] = true
		for i := 1; i <= layout.Count; i++ {
			out = append(out, slots.Slot{
				ID:           uuid.New(),
				Identifier:   fmt.Sprintf("%s-%02d", layout.Prefix, i),
				Status:       slots.StatusAvailable,
				VehicleClass: class,
			})
		}
	}
	return out, nil
}
