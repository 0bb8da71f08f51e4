// Package db opens the database, applies migrations and seeds reference data.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-stages/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryDelay is the pause between connection attempts at startup.
var retryDelay = 2 * time.Second

// Open connects to the configured database, retrying while it starts up.
func Open(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	dialector, display := dialectorFor(cfg)
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}
	var (
		gdb *gorm.DB
		err error
	)
	for i := 1; i <= attempts; i++ {
		gdb, err = gorm.Open(dialector, gormConfig(cfg.Debug))
		if err == nil {
			err = gdb.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready", "attempt", i, "of", attempts, "error", err)
		if i < attempts {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
	}
	if cfg.Driver == "sqlite" {
		if err := limitSQLite(gdb); err != nil {
			return nil, err
		}
	}
	log.Info("database connected", "driver", cfg.Driver, "dsn", display)
	return gdb, nil
}

// Close releases the connection pool behind gdb.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OpenSQLite opens a sqlite database without retries. Tests use it with
// "file:<name>?mode=memory&cache=shared".
func OpenSQLite(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig(false))
	if err != nil {
		return nil, err
	}
	if err := limitSQLite(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, string) {
	if cfg.Driver == "sqlite" {
		return sqlite.Open(cfg.SQLitePath), cfg.SQLitePath
	}
	dsn := NormalizeDSN(cfg.DSN())
	return postgres.Open(dsn), MaskDSN(dsn)
}

// gormConfig translates driver errors so unique violations surface as
// gorm.ErrDuplicatedKey.
func gormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	}
}

// limitSQLite serializes access: sqlite has a single writer and shared-cache
// memory databases lock per connection.
func limitSQLite(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}
