package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"parkwise/internal/lots"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/slots"
	"parkwise/internal/users"
	"parkwise/internal/vehicles"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Parkwise Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"reviews",
		"payments",
		"bookings",
		"slots",
		"pricing_tiers",
		"lots",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	lotIDs, err := s.SeedLots()
	if err != nil {
		return fmt.Errorf("failed to seed lots: %w", err)
	}

	if err := s.SeedSlots(lotIDs); err != nil {
		return fmt.Errorf("failed to seed slots: %w", err)
	}

	return nil
}

// SeedUsers creates one admin plus a handful of drivers, all with the
// password "password123".
func (s *Seeder) SeedUsers() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	seedUsers := []users.User{
		{ID: uuid.New(), FirstName: "Admin", LastName: "Parkwise", Email: "admin@parkwise.vn", Password: string(hash), Role: users.RoleAdmin},
		{ID: uuid.New(), FirstName: "Linh", LastName: "Tran", Email: "linh.tran@example.com", Password: string(hash), Role: users.RoleUser},
		{ID: uuid.New(), FirstName: "Minh", LastName: "Nguyen", Email: "minh.nguyen@example.com", Password: string(hash), Role: users.RoleUser},
		{ID: uuid.New(), FirstName: "Huong", LastName: "Pham", Email: "huong.pham@example.com", Password: string(hash), Role: users.RoleUser},
	}

	for _, u := range seedUsers {
		if err := s.db.PostgreSQL.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Email, err)
		}
		fmt.Printf("  Created user: %s (%s)\n", u.Email, u.Role)
	}
	return nil
}

// SeedLots creates city lots with per-class pricing tiers.
func (s *Seeder) SeedLots() ([]uuid.UUID, error) {
	seedLots := []lots.Lot{
		{
			ID:        uuid.New(),
			Name:      "Ben Thanh Central Parking",
			Address:   "1 Le Loi, District 1, Ho Chi Minh City",
			Latitude:  10.7721,
			Longitude: 106.6983,
			OpenHour:  0,
			CloseHour: 0, // 24/7
			Status:    lots.LotStatusActive,
			PricingTiers: []lots.PricingTier{
				{ID: uuid.New(), VehicleClass: vehicles.ClassMotorbike, PricePerHour: 5000},
				{ID: uuid.New(), VehicleClass: vehicles.ClassCar4Seats, PricePerHour: 25000},
				{ID: uuid.New(), VehicleClass: vehicles.ClassCar7Seats, PricePerHour: 30000},
				{ID: uuid.New(), VehicleClass: vehicles.ClassSUV, PricePerHour: 35000},
				{ID: uuid.New(), VehicleClass: vehicles.ClassEVCar, PricePerHour: 28000},
			},
		},
		{
			ID:        uuid.New(),
			Name:      "Landmark 81 Basement",
			Address:   "720A Dien Bien Phu, Binh Thanh, Ho Chi Minh City",
			Latitude:  10.7951,
			Longitude: 106.7218,
			OpenHour:  6,
			CloseHour: 23,
			Status:    lots.LotStatusActive,
			PricingTiers: []lots.PricingTier{
				{ID: uuid.New(), VehicleClass: vehicles.ClassMotorbike, PricePerHour: 8000},
				{ID: uuid.New(), VehicleClass: vehicles.ClassCar4Seats, PricePerHour: 40000},
				{ID: uuid.New(), VehicleClass: vehicles.ClassEVCar, PricePerHour: 45000},
			},
		},
	}

	ids := make([]uuid.UUID, 0, len(seedLots))
	for _, lot := range seedLots {
		if err := s.db.PostgreSQL.Create(&lot).Error; err != nil {
			return nil, fmt.Errorf("failed to create lot %s: %w", lot.Name, err)
		}
		fmt.Printf("  Created lot: %s (%d tiers)\n", lot.Name, len(lot.PricingTiers))
		ids = append(ids, lot.ID)
	}
	return ids, nil
}

// SeedSlots lays out identified slots per lot: motorbike rows, car rows and
// a couple of EV chargers.
func (s *Seeder) SeedSlots(lotIDs []uuid.UUID) error {
	layouts := []struct {
		prefix string
		class  vehicles.Class
		count  int
	}{
		{"M", vehicles.ClassMotorbike, 20},
		{"A", vehicles.ClassCar4Seats, 10},
		{"B", vehicles.ClassAny, 6},
		{"EV", vehicles.ClassEVCar, 2},
	}

	for _, lotID := range lotIDs {
		created := 0
		for _, layout := range layouts {
			for i := 1; i <= layout.count; i++ {
				slot := slots.Slot{
					ID:           uuid.New(),
					LotID:        lotID,
					Identifier:   fmt.Sprintf("%s-%02d", layout.prefix, i),
					Status:       slots.StatusAvailable,
					VehicleClass: layout.class,
				}
				if err := s.db.PostgreSQL.Create(&slot).Error; err != nil {
					return fmt.Errorf("failed to create slot %s: %w", slot.Identifier, err)
				}
				created++
			}
		}
		fmt.Printf("  Created %d slots for lot %s\n", created, lotID)
	}
	return nil
}
