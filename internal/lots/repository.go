package lots

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for lot operations
type Repository interface {
	CreateLot(ctx context.Context, lot *Lot) error
	GetLotByID(ctx context.Context, id uuid.UUID) (*Lot, error)
	GetLotByName(ctx context.Context, name string) (*Lot, error)
	GetLots(ctx context.Context, filters LotFilters) (*PaginatedLots, error)
	UpdateLot(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteLot(ctx context.Context, id uuid.UUID) error

	ReplacePricingTiers(ctx context.Context, lotID uuid.UUID, tiers []PricingTier) error
	GetPricingTiers(ctx context.Context, lotID uuid.UUID) ([]PricingTier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new lot repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLot(ctx context.Context, lot *Lot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *repository) GetLotByID(ctx context.Context, id uuid.UUID) (*Lot, error) {
	var lot Lot
	err := r.db.WithContext(ctx).
		Preload("PricingTiers").
		First(&lot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *repository) GetLotByName(ctx context.Context, name string) (*Lot, error) {
	var lot Lot
	err := r.db.WithContext(ctx).First(&lot, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *repository) GetLots(ctx context.Context, filters LotFilters) (*PaginatedLots, error) {
	var lots []Lot
	var total int64

	query := r.db.WithContext(ctx).Model(&Lot{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (filters.Page - 1) * filters.Limit
	err := query.
		Preload("PricingTiers").
		Order("name ASC").
		Offset(offset).
		Limit(filters.Limit).
		Find(&lots).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filters.Limit) - 1) / int64(filters.Limit))

	return &PaginatedLots{
		Lots:       lots,
		Total:      total,
		Page:       filters.Page,
		Limit:      filters.Limit,
		TotalPages: totalPages,
	}, nil
}

func (r *repository) UpdateLot(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Lot{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteLot(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", id).Delete(&PricingTier{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Lot{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *repository) ReplacePricingTiers(ctx context.Context, lotID uuid.UUID, tiers []PricingTier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", lotID).Delete(&PricingTier{}).Error; err != nil {
			return err
		}
		for i := range tiers {
			tiers[i].LotID = lotID
		}
		return tx.Create(&tiers).Error
	})
}

func (r *repository) GetPricingTiers(ctx context.Context, lotID uuid.UUID) ([]PricingTier, error) {
	var tiers []PricingTier
	err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("vehicle_class ASC").
		Find(&tiers).Error
	return tiers, err
}
