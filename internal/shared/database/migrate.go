package database

import (
	"parkwise/internal/bookings"
	"parkwise/internal/lots"
	"parkwise/internal/reviews"
	"parkwise/internal/slots"
	"parkwise/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&lots.Lot{},
		&lots.PricingTier{},
		&slots.Slot{},
		&bookings.Booking{},
		&bookings.Payment{},
		&reviews.Review{},
	)
}
