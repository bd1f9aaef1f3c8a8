package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// registers the pure-Go "sqlite" driver used below
	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for postgres:// URLs and SQLite for anything else.
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if IsPostgres(dsn) {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: sqlite handle: %w", err)
	}
	// SQLite allows one writer; a single connection serializes writes instead of
	// surfacing SQLITE_BUSY to callers.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
