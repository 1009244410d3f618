package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parkwise/internal/shared/apperrors"
)

// Repository interface defines the contract for review data access
type Repository interface {
	CreateReview(ctx context.Context, review *Review) error
	UpdateReview(ctx context.Context, review *Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	GetReviewByID(ctx context.Context, id uuid.UUID) (*Review, error)
	GetReviewByUserAndLot(ctx context.Context, userID, lotID uuid.UUID) (*Review, error)
	GetReviewsByLot(ctx context.Context, lotID uuid.UUID, filters ReviewFilters) ([]Review, int64, error)
	GetLotAggregates(ctx context.Context, lotID uuid.UUID) (avg float64, count int, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new review repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateReview inserts the review and recomputes the lot aggregates in the
// same transaction, so lots.rating never drifts from the review rows.
func (r *repository) CreateReview(ctx context.Context, review *Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: lot already reviewed", apperrors.ErrConflict)
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		return refreshLotAggregates(tx, review.LotID)
	})
}

func (r *repository) UpdateReview(ctx context.Context, review *Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Review{}).
			Where("id = ?", review.ID).
			Updates(map[string]interface{}{
				"rating":  review.Rating,
				"comment": review.Comment,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update review: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("review", review.ID.String())
		}
		return refreshLotAggregates(tx, review.LotID)
	})
}

func (r *repository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("review", id.String())
			}
			return fmt.Errorf("failed to fetch review: %w", err)
		}
		if err := tx.Delete(&Review{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return refreshLotAggregates(tx, review.LotID)
	})
}

// refreshLotAggregates recomputes rating and num_reviews on the lot row from
// the review table. Runs inside the caller's transaction.
func refreshLotAggregates(tx *gorm.DB, lotID uuid.UUID) error {
	err := tx.Exec(`
		UPDATE lots SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE lot_id = ?), 0),
			num_reviews = (SELECT COUNT(*) FROM reviews WHERE lot_id = ?),
			updated_at = NOW()
		WHERE id = ?`, lotID, lotID, lotID).Error
	if err != nil {
		return fmt.Errorf("failed to refresh lot aggregates: %w", err)
	}
	return nil
}

func (r *repository) GetReviewByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var review Review
	err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", id.String())
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &review, nil
}

func (r *repository) GetReviewByUserAndLot(ctx context.Context, userID, lotID uuid.UUID) (*Review, error) {
	var review Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lot_id = ?", userID, lotID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", lotID.String())
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &review, nil
}

func (r *repository) GetReviewsByLot(ctx context.Context, lotID uuid.UUID, filters ReviewFilters) ([]Review, int64, error) {
	var reviews []Review
	var total int64

	query := r.db.WithContext(ctx).Model(&Review{}).Where("lot_id = ?", lotID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	offset := (filters.Page - 1) * filters.Limit
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(filters.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *repository) GetLotAggregates(ctx context.Context, lotID uuid.UUID) (float64, int, error) {
	var row struct {
		Avg   float64
		Count int
	}
	err := r.db.WithContext(ctx).Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("lot_id = ?", lotID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return row.Avg, row.Count, nil
}
