package db

import (
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/opencivicdata/ocd-sync/internal/config"
)

// Connect runs against a real server; skipped when no database is available.
func TestConnectSetsSessionTimezone(t *testing.T) {
	_ = godotenv.Load("../../.env.local")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping database test")
	}

	gdb, err := Connect(config.Config{DatabaseURL: dsn, Timezone: "America/Chicago"})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	var zone string
	if err := gdb.Raw("SHOW TimeZone").Scan(&zone).Error; err != nil {
		t.Fatalf("read session timezone: %v", err)
	}
	if zone != "America/Chicago" {
		t.Errorf("session timezone = %q, want America/Chicago", zone)
	}
}
