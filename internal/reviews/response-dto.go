package reviews

import (
	"time"

	"github.com/google/uuid"
)

// ReviewResponse is a review enriched with the reviewer's display name
type ReviewResponse struct {
	ID           uuid.UUID `json:"id"`
	LotID        uuid.UUID `json:"lot_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	ReviewerName string    `json:"reviewer_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PaginatedReviews wraps a review listing with pagination metadata
type PaginatedReviews struct {
	Reviews    []ReviewResponse `json:"reviews"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`

	// Aggregates for the lot the listing belongs to
	AverageRating float64 `json:"average_rating"`
	NumReviews    int     `json:"num_reviews"`
}
