package db

import (
	"fmt"

	"github.com/ikkim/lego-inventory-backend/config"
	appLogger "github.com/ikkim/lego-inventory-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxIdleConns = 10
	maxOpenConns = 100
)

// Connect opens the inventory database. The returned handle is passed to
// repositories explicitly; the package keeps no global connection.
func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	conn, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"max_idle_conns": maxIdleConns,
		"max_open_conns": maxOpenConns,
	})
	return conn, nil
}

// gormConfig is shared by the postgres and test connections. TranslateError
// lets repositories match gorm.ErrDuplicatedKey regardless of driver.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// Close closes the underlying connection pool
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
