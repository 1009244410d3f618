package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"parkwise/internal/shared/apperrors"
	"parkwise/internal/shared/constants"
	"parkwise/pkg/cache"
	"parkwise/pkg/logger"
)

// BookingService is the slice of the bookings service the review flow needs.
// Only users who completed a stay at a lot may review it.
type BookingService interface {
	HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error)
}

// UserService resolves reviewer display names without importing the auth
// package directly (implemented by auth.UserServiceAdapter).
type UserService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (email, firstName, lastName string, err error)
}

// Service interface defines the contract for review business logic
type Service interface {
	CreateReview(ctx context.Context, userID uuid.UUID, lotID string, req CreateReviewRequest) (*Review, error)
	UpdateReview(ctx context.Context, reviewID, userID uuid.UUID, req UpdateReviewRequest) (*Review, error)
	DeleteReview(ctx context.Context, reviewID, userID uuid.UUID, isAdmin bool) error
	GetLotReviews(ctx context.Context, lotID string, filters ReviewFilters) (*PaginatedReviews, error)
}

// service implements the Service interface
type service struct {
	repo        Repository
	bookingSvc  BookingService
	userService UserService
	cacheSvc    cache.Service
	log         *logger.Logger
}

// NewService creates a new review service instance
func NewService(repo Repository, bookingSvc BookingService, userService UserService, cacheSvc cache.Service) Service {
	return &service{
		repo:        repo,
		bookingSvc:  bookingSvc,
		userService: userService,
		cacheSvc:    cacheSvc,
		log:         logger.GetDefault(),
	}
}

func (s *service) CreateReview(ctx context.Context, userID uuid.UUID, lotID string, req CreateReviewRequest) (*Review, error) {
	lid, err := uuid.Parse(lotID)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	eligible, err := s.bookingSvc.HasCompletedBooking(ctx, userID, lid)
	if err != nil {
		return nil, fmt.Errorf("failed to check review eligibility: %w", err)
	}
	if !eligible {
		return nil, fmt.Errorf("%w: reviews require a completed stay at the lot", apperrors.ErrUnauthorized)
	}

	if existing, err := s.repo.GetReviewByUserAndLot(ctx, userID, lid); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: lot already reviewed", apperrors.ErrConflict)
	}

	review := &Review{
		ID:      uuid.New(),
		UserID:  userID,
		LotID:   lid,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	s.invalidateReviewCaches(ctx)
	return review, nil
}

func (s *service) UpdateReview(ctx context.Context, reviewID, userID uuid.UUID, req UpdateReviewRequest) (*Review, error) {
	review, err := s.repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, fmt.Errorf("%w: review belongs to another user", apperrors.ErrUnauthorized)
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	s.invalidateReviewCaches(ctx)
	return review, nil
}

func (s *service) DeleteReview(ctx context.Context, reviewID, userID uuid.UUID, isAdmin bool) error {
	review, err := s.repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != userID {
		return fmt.Errorf("%w: review belongs to another user", apperrors.ErrUnauthorized)
	}

	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return err
	}

	s.invalidateReviewCaches(ctx)
	return nil
}

func (s *service) GetLotReviews(ctx context.Context, lotID string, filters ReviewFilters) (*PaginatedReviews, error) {
	lid, err := uuid.Parse(lotID)
	if err != nil {
		return nil, fmt.Errorf("invalid lot ID: %w", err)
	}

	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 10
	}

	cacheKey := constants.BuildReviewsByLotKey(lotID, filters.Page)
	if s.cacheSvc != nil {
		var cached PaginatedReviews
		if err := s.cacheSvc.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	reviews, total, err := s.repo.GetReviewsByLot(ctx, lid, filters)
	if err != nil {
		return nil, err
	}

	avg, count, err := s.repo.GetLotAggregates(ctx, lid)
	if err != nil {
		return nil, err
	}

	responses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, s.toResponse(ctx, review))
	}

	totalPages := int((total + int64(filters.Limit) - 1) / int64(filters.Limit))
	result := &PaginatedReviews{
		Reviews:       responses,
		Total:         total,
		Page:          filters.Page,
		Limit:         filters.Limit,
		TotalPages:    totalPages,
		AverageRating: avg,
		NumReviews:    count,
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.Set(ctx, cacheKey, result, constants.TTL_REVIEWS_BY_LOT); err != nil {
			s.log.Warn("failed to cache lot reviews", "lot_id", lotID, "error", err)
		}
	}

	return result, nil
}

// toResponse resolves the reviewer name; lookups that fail degrade to an
// anonymous label rather than failing the listing.
func (s *service) toResponse(ctx context.Context, review Review) ReviewResponse {
	name := "Anonymous"
	if s.userService != nil {
		if _, firstName, lastName, err := s.userService.GetUserByID(ctx, review.UserID); err == nil {
			name = fmt.Sprintf("%s %s", firstName, lastName)
		}
	}
	return ReviewResponse{
		ID:           review.ID,
		LotID:        review.LotID,
		Rating:       review.Rating,
		Comment:      review.Comment,
		ReviewerName: name,
		CreatedAt:    review.CreatedAt,
		UpdatedAt:    review.UpdatedAt,
	}
}

// invalidateReviewCaches drops review listings plus lot caches, since the
// lot's rating aggregate changed with the review.
func (s *service) invalidateReviewCaches(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeletePattern(ctx, constants.PATTERN_INVALIDATE_REVIEWS_ALL); err != nil {
		s.log.Warn("failed to invalidate review caches", "error", err)
	}
	if err := s.cacheSvc.DeletePattern(ctx, constants.PATTERN_INVALIDATE_LOTS_ALL); err != nil {
		s.log.Warn("failed to invalidate lot caches", "error", err)
	}
}
