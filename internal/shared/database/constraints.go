package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// A slot may back-reference at most one booking, and no two slots
	// may reference the same booking.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_slot_current_booking
		ON slots (current_booking_id)
		WHERE current_booking_id IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	// Index for the sweeper scans over live bookings by status and time
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_bookings_status_start_time
		ON bookings (status, start_time);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_bookings_status_end_time
		ON bookings (status, end_time);
	`).Error
	if err != nil {
		return err
	}

	// Index for availability counts per lot
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_slots_lot_status_class
		ON slots (lot_id, status, vehicle_class);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
