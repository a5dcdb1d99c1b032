package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leasesync/internal/model"
)

// Migrate runs database migrations for all models
func Migrate(conn *gorm.DB, logger *logrus.Entry) error {
	logger.Info("Starting database migration...")

	models := []interface{}{
		&model.SyncRun{},
	}

	if err := conn.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Infof("Database migration completed (%d tables)", len(models))
	return nil
}
