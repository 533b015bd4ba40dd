// Command dedup-cleanup finds exact-key duplicate clusters in the event
// store and removes every member but the canonical first row. It reports a
// removal plan by default; pass -apply to perform the deletions.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yakimafinds/event-dedup/internal/dedup"
	"github.com/yakimafinds/event-dedup/internal/platform/config"
	db "github.com/yakimafinds/event-dedup/internal/storage"
)

func main() {
	apply := flag.Bool("apply", false, "perform deletions instead of reporting the removal plan")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	opts := db.DefaultOptions()
	opts.QueryTimeout = cfg.QueryTimeout

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, opts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if cfg.CleanupRunMigrate {
		if err := database.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	dryRun := cfg.CleanupDryRun
	if *apply {
		dryRun = false
	}

	cleaner := dedup.NewCleaner(database, cfg.CleanupDeleteRPS, &logger)

	result, err := cleaner.Run(ctx, dryRun)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cleanup failed")
	}

	logger.Info().
		Bool("dry_run", dryRun).
		Int("groups_found", result.GroupsFound).
		Int("events_to_remove", result.EventsToRemove).
		Ints64("removed_ids", result.RemovedIDs).
		Int("skipped_groups", result.SkippedGroups).
		Msg("Cleanup finished")
}

// setLogLevel sets the global log level based on the configuration.
func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
