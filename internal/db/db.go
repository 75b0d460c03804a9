package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"booking-rooms-backend/config"
	"booking-rooms-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}
	if err := SeedEquipments(db); err != nil {
		return nil, fmt.Errorf("equipment seed failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs AutoMigrate for every model. Split out so tests can run it
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Equipment{},
		&model.Room{},
		&model.Reservation{},
		&model.PushSubscription{},
	)
}

// defaultEquipments is the equipment reference data every deployment starts
// with. There is no create endpoint for equipment.
var defaultEquipments = []string{"Projector", "Whiteboard", "Conference Phone", "TV"}

// SeedEquipments inserts the default equipment rows, skipping any that
// already exist. Idempotent across restarts.
func SeedEquipments(db *gorm.DB) error {
	for _, name := range defaultEquipments {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Equipment{Name: name}).Error
		if err != nil {
			return fmt.Errorf("failed to seed equipment %q: %w", name, err)
		}
	}
	return nil
}
