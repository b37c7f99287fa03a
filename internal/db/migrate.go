package db

import (
	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.Part{},
		&model.LegoSet{},
		&model.LegoSetPart{},
		&model.OrderDetails{},
		&model.Order{},
		&model.OrderItem{},
		&model.Sequence{},
	}
}

// Migrate runs database migrations
func Migrate(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
