package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/config"
	"github.com/skillzlab/enrollment-service/internal/models"
)

// InitDatabase opens the postgres connection and migrates the schema.
// TranslateError is on so unique violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(
		&models.Coupon{},
		&models.PendingEnrollment{},
		&models.Enrollment{},
		&models.Profile{},
		&models.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
