package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Common configuration errors.
var (
	ErrMissingJurisdiction = errors.New("OCD_JURISDICTION_ID environment variable is required")
	ErrMissingCouncilOrg   = errors.New("one of COUNCIL_ORG_ID or COUNCIL_ORG_NAME is required")
	ErrMissingDatabaseURL  = errors.New("DATABASE_URL environment variable is required")
	ErrMissingTimezone     = errors.New("APP_TIMEZONE environment variable is required")
)

// DefaultAPIBase is the default Open Civic Data API endpoint.
const DefaultAPIBase = "https://ocd.datamade.us"

// Config holds all engine configuration, loaded once at startup and passed
// explicitly to every component.
type Config struct {
	// Remote API
	APIBase string
	APIKey  string

	// Jurisdiction being ingested
	JurisdictionID  string
	CouncilOrgID    string
	CouncilOrgName  string
	Sessions        []string // empty: discovered from the jurisdiction record
	Timezone        string

	// Storage
	DatabaseURL  string
	DownloadDir  string
	HeadshotDir  string

	// Boundary service (optional)
	BoundaryAPIBase string
	BoundarySets    []string

	// Downstream hooks (optional)
	NotifyURL string
}

// boundaryFile is the shape of the optional boundaries.yaml file.
type boundaryFile struct {
	Sets []string `yaml:"sets"`
}

// Load reads configuration from the environment.
//
// Environment variables:
//   - OCD_API_BASE: API base URL (default: https://ocd.datamade.us)
//   - OCD_API_KEY: optional API key sent as a bearer token
//   - OCD_JURISDICTION_ID: jurisdiction being ingested (required)
//   - COUNCIL_ORG_ID / COUNCIL_ORG_NAME: the council organization (one required)
//   - OCD_SESSIONS: comma-separated legislative session identifiers (optional)
//   - APP_TIMEZONE: IANA zone for naive timestamps (required)
//   - DATABASE_URL: Postgres DSN (required)
//   - DOWNLOAD_DIR: JSON cache root (default: downloads)
//   - HEADSHOT_DIR: headshot image directory (default: downloads/headshots)
//   - BOUNDARY_API_BASE, BOUNDARY_SETS: boundary service (optional)
//   - BOUNDARY_FILE: YAML file listing boundary sets (optional, merged)
//   - NOTIFY_URL: notification dispatcher endpoint (optional)
func Load() (Config, error) {
	cfg := Config{
		APIBase:         envOr("OCD_API_BASE", DefaultAPIBase),
		APIKey:          os.Getenv("OCD_API_KEY"),
		JurisdictionID:  strings.TrimSpace(os.Getenv("OCD_JURISDICTION_ID")),
		CouncilOrgID:    strings.TrimSpace(os.Getenv("COUNCIL_ORG_ID")),
		CouncilOrgName:  strings.TrimSpace(os.Getenv("COUNCIL_ORG_NAME")),
		Timezone:        strings.TrimSpace(os.Getenv("APP_TIMEZONE")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DownloadDir:     envOr("DOWNLOAD_DIR", "downloads"),
		HeadshotDir:     envOr("HEADSHOT_DIR", "downloads/headshots"),
		BoundaryAPIBase: os.Getenv("BOUNDARY_API_BASE"),
		NotifyURL:       os.Getenv("NOTIFY_URL"),
	}

	cfg.Sessions = splitList(os.Getenv("OCD_SESSIONS"))
	cfg.BoundarySets = splitList(os.Getenv("BOUNDARY_SETS"))

	if path := os.Getenv("BOUNDARY_FILE"); path != "" {
		sets, err := loadBoundaryFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load boundary file: %w", err)
		}
		cfg.BoundarySets = append(cfg.BoundarySets, sets...)
	}

	return cfg, cfg.Validate()
}

// Validate checks that required settings are present. Missing required keys
// are fatal at startup.
func (c Config) Validate() error {
	if c.JurisdictionID == "" {
		return ErrMissingJurisdiction
	}
	if c.CouncilOrgID == "" && c.CouncilOrgName == "" {
		return ErrMissingCouncilOrg
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Timezone == "" {
		return ErrMissingTimezone
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate must have passed.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func loadBoundaryFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f boundaryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f.Sets, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
