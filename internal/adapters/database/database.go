package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// Open connects to PostgreSQL, applies the pool limits and migrates the schema
func Open(cfg ports.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.NewConfigurationError("database DSN is empty", nil)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, errors.NewDatabaseError("connect to database", err)
	}

	if err := ConfigurePool(db, cfg); err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// ConfigurePool bounds the connection pool shared by the bot and the scheduler
func ConfigurePool(db *gorm.DB, cfg ports.DatabaseConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.NewDatabaseError("get underlying database connection", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}

// Migrate creates or updates the telegram_users and weather_subscriptions tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserModel{}, &SubscriptionModel{}); err != nil {
		return errors.NewDatabaseError("auto migrate", err)
	}
	return nil
}

// Close releases every pooled connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.NewDatabaseError("get underlying database connection", err)
	}
	return sqlDB.Close()
}
