package reviews

import (
	"time"

	"github.com/google/uuid"
)

// Review is one user's rating of a lot. A user gets a single review per lot
// and may edit it; the (user_id, lot_id) pair is unique.
type Review struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_lot"`
	LotID   uuid.UUID `json:"lot_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_lot;index"`
	Rating  int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment string    `json:"comment" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Review) TableName() string {
	return "reviews"
}
