// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all tunables for the dedup engine and the cleanup command.
// Matching thresholds default to the values the scrapers were tuned against;
// change them together with the pinned behavior tests.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Matching
	MatchThreshold     int           `env:"MATCH_THRESHOLD" envDefault:"80"`
	SimilarityWindow   time.Duration `env:"SIMILARITY_WINDOW" envDefault:"30m"`
	MaxVenueDistanceKm float64       `env:"MAX_VENUE_DISTANCE_KM" envDefault:"0.1"`
	RecencyWindow      time.Duration `env:"RECENCY_WINDOW" envDefault:"24h"`
	CandidateLimit     int           `env:"CANDIDATE_LIMIT" envDefault:"50"`

	// Storage
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`

	// Cleanup job
	CleanupDryRun     bool    `env:"CLEANUP_DRY_RUN" envDefault:"true"`
	CleanupDeleteRPS  float64 `env:"CLEANUP_DELETE_RPS" envDefault:"10"`
	CleanupRunMigrate bool    `env:"CLEANUP_RUN_MIGRATE" envDefault:"false"`
}

// Load reads configuration from the environment, after a best-effort load
// of a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
