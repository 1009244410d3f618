package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkwise/internal/shared/apperrors"
)

type memReviewRepo struct {
	reviews map[uuid.UUID]*Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[uuid.UUID]*Review)}
}

func (m *memReviewRepo) CreateReview(ctx context.Context, review *Review) error {
	for _, r := range m.reviews {
		if r.UserID == review.UserID && r.LotID == review.LotID {
			return apperrors.ErrConflict
		}
	}
	copied := *review
	m.reviews[review.ID] = &copied
	return nil
}

func (m *memReviewRepo) UpdateReview(ctx context.Context, review *Review) error {
	r, ok := m.reviews[review.ID]
	if !ok {
		return apperrors.NotFound("review", review.ID.String())
	}
	r.Rating = review.Rating
	r.Comment = review.Comment
	return nil
}

func (m *memReviewRepo) DeleteReview(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.reviews[id]; !ok {
		return apperrors.NotFound("review", id.String())
	}
	delete(m.reviews, id)
	return nil
}

func (m *memReviewRepo) GetReviewByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id.String())
	}
	copied := *r
	return &copied, nil
}

func (m *memReviewRepo) GetReviewByUserAndLot(ctx context.Context, userID, lotID uuid.UUID) (*Review, error) {
	for _, r := range m.reviews {
		if r.UserID == userID && r.LotID == lotID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("review", lotID.String())
}

func (m *memReviewRepo) GetReviewsByLot(ctx context.Context, lotID uuid.UUID, filters ReviewFilters) ([]Review, int64, error) {
	var out []Review
	for _, r := range m.reviews {
		if r.LotID == lotID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memReviewRepo) GetLotAggregates(ctx context.Context, lotID uuid.UUID) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.LotID == lotID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type fakeBookingService struct {
	completed map[uuid.UUID]bool
}

func (f *fakeBookingService) HasCompletedBooking(ctx context.Context, userID, lotID uuid.UUID) (bool, error) {
	return f.completed[userID], nil
}

type fakeUserService struct{}

func (fakeUserService) GetUserByID(ctx context.Context, userID uuid.UUID) (string, string, string, error) {
	return "driver@example.com", "Linh", "Tran", nil
}

func TestCreateReviewRequiresCompletedStay(t *testing.T) {
	repo := newMemReviewRepo()
	userID := uuid.New()
	lotID := uuid.New()
	svc := NewService(repo, &fakeBookingService{completed: map[uuid.UUID]bool{}}, fakeUserService{}, nil)

	_, err := svc.CreateReview(context.Background(), userID, lotID.String(), CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateReviewOncePerLot(t *testing.T) {
	repo := newMemReviewRepo()
	userID := uuid.New()
	lotID := uuid.New()
	svc := NewService(repo, &fakeBookingService{completed: map[uuid.UUID]bool{userID: true}}, fakeUserService{}, nil)

	review, err := svc.CreateReview(context.Background(), userID, lotID.String(), CreateReviewRequest{Rating: 4, Comment: "Easy access"})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	_, err = svc.CreateReview(context.Background(), userID, lotID.String(), CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateReviewOwnership(t *testing.T) {
	repo := newMemReviewRepo()
	userID := uuid.New()
	lotID := uuid.New()
	svc := NewService(repo, &fakeBookingService{completed: map[uuid.UUID]bool{userID: true}}, fakeUserService{}, nil)

	review, err := svc.CreateReview(context.Background(), userID, lotID.String(), CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	_, err = svc.UpdateReview(context.Background(), review.ID, uuid.New(), UpdateReviewRequest{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	newRating := 5
	updated, err := svc.UpdateReview(context.Background(), review.ID, userID, UpdateReviewRequest{Rating: &newRating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
}

func TestDeleteReviewAdminOverride(t *testing.T) {
	repo := newMemReviewRepo()
	userID := uuid.New()
	lotID := uuid.New()
	svc := NewService(repo, &fakeBookingService{completed: map[uuid.UUID]bool{userID: true}}, fakeUserService{}, nil)

	review, err := svc.CreateReview(context.Background(), userID, lotID.String(), CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	err = svc.DeleteReview(context.Background(), review.ID, uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = svc.DeleteReview(context.Background(), review.ID, uuid.New(), true)
	require.NoError(t, err)
}

func TestGetLotReviewsAggregates(t *testing.T) {
	repo := newMemReviewRepo()
	lotID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()
	svc := NewService(repo, &fakeBookingService{completed: map[uuid.UUID]bool{userA: true, userB: true}}, fakeUserService{}, nil)

	_, err := svc.CreateReview(context.Background(), userA, lotID.String(), CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, err = svc.CreateReview(context.Background(), userB, lotID.String(), CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	result, err := svc.GetLotReviews(context.Background(), lotID.String(), ReviewFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, 2, result.NumReviews)
	assert.InDelta(t, 3.5, result.AverageRating, 0.001)
	require.Len(t, result.Reviews, 2)
	assert.Equal(t, "Linh Tran", result.Reviews[0].ReviewerName)
}
