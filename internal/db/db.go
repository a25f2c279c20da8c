package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

// Connect opens the engine's database handle. Staging table names are global
// per entity type, so the pool is capped at a single connection; the sync
// pipeline is strictly sequential anyway.
func Connect(cfg config.Config) (*gorm.DB, error) {
	// Verbose logger to surface slow queries in scheduler logs.
	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Naive timestamps from the remote dataset are interpreted in the
	// jurisdiction's zone; keep the session aligned with it. SET takes only
	// literals, so the zone rides through set_config, which can bind.
	if err := db.Exec("SELECT set_config('TimeZone', ?, false)", cfg.Timezone).Error; err != nil {
		return nil, fmt.Errorf("set session timezone: %w", err)
	}

	log.Println("[db] connected")
	return db, nil
}
