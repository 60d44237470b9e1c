// Package database handles database connections, migrations and retries.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/config"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PersistentModels returns every schema-managed model, parents first.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.BlogPost{},
		&models.Project{},
		&models.Comment{},
		&models.Reaction{},
		&models.PageView{},
	}
}

// DSN builds the PostgreSQL connection string for cfg.
func DSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode)
}

// Connect opens a PostgreSQL connection for cfg, retrying the first ping
// with the configured backoff so the API can start alongside its database.
// Outside production the schema is auto-migrated.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         NewGormLogger(observability.Logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}

	sqlDB, _ := db.DB()
	retrier := NewRetrier(cfg.DBRetryAttempts, time.Duration(cfg.DBRetryInitialMS)*time.Millisecond)
	if err := retrier.Do(context.Background(), ClassRead, sqlDB.PingContext); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	observability.Logger.Info("database connected",
		slog.String("host", cfg.DBHost), slog.String("name", cfg.DBName))

	if !cfg.IsProduction() {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates every table in PersistentModels.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	observability.Logger.Info("database migration completed", slog.Int("tables", len(PersistentModels())))
	return nil
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(positiveOr(cfg.DBMaxOpenConns, 25))
	sqlDB.SetMaxIdleConns(positiveOr(cfg.DBMaxIdleConns, 5))
	sqlDB.SetConnMaxLifetime(time.Duration(positiveOr(cfg.DBConnMaxLifetimeMinutes, 5)) * time.Minute)
	return nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
