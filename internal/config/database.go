package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fleetglue/server/internal/models"
)

// OpenDatabase connects to the configured database. TranslateError is
// enabled so uniqueness violations surface as gorm.ErrDuplicatedKey
// regardless of driver.
func OpenDatabase(cfg *Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Migrate creates or updates the schema for all domain entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Site{},
		&models.SiteUser{},
		&models.Device{},
		&models.Sensor{},
		&models.SensorReading{},
	)
}
