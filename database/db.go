package database

import (
	"context"
	"fmt"
	"log/slog" // use slog for structured logging
	"strings"
	"time"

	"movietracker/internal/config"
	"movietracker/internal/microservices/http-api/models"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectDB opens the configured store, retrying the first ping so the API can
// start alongside its database container.
func ConnectDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   NewGormLogger(logger, 200*time.Millisecond),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite allows one writer; a single connection also keeps :memory: databases shared
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	err = retry.Do(
		func() error { return sqlDB.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(cfg.DBConnectAttempts)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Database not reachable, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Connected to the database successfully", "driver", cfg.DBDriver)
	return db, nil
}

// Dialector picks the gorm driver for name.
func Dialector(name, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", name)
	}
}

// Migrate creates or updates the catalog schema and makes sure the
// watch-order sequence row exists.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(
		&models.CatalogItem{},
		&models.ConstituentTitle{},
		&models.WatchSequence{},
	); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if err := seedWatchSequence(db); err != nil {
		return fmt.Errorf("failed to seed watch sequence: %w", err)
	}

	logger.Info("Database migrations applied successfully")
	return nil
}

// seedWatchSequence starts the sequence at the highest stored watch order so
// that existing data keeps its numbering. An existing row is left untouched.
func seedWatchSequence(db *gorm.DB) error {
	var current int64
	if err := db.Model(&models.CatalogItem{}).
		Select("COALESCE(MAX(watch_order), 0)").
		Row().Scan(&current); err != nil {
		return err
	}

	seq := models.WatchSequence{Name: models.WatchOrderSequence, Value: current}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error
}

// Ping is used by the liveness endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
