package main

import (
	"context"
	"flag"
	"time"

	"aloka/internal/config"
	"aloka/internal/database"
	"aloka/internal/pkg/logger"
	"aloka/internal/repository"
)

// purge hard-removes studios that were deleted more than PURGE_AFTER ago.
func main() {
	dryRun := flag.Bool("dry-run", false, "report the cutoff without deleting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := logger.Base()
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()})
	log := logger.WithComponent("purge")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer func() { _ = database.Close(db) }()

	cutoff := time.Now().UTC().Add(-cfg.PurgeAfter)
	if *dryRun {
		log.Info().Time("cutoff", cutoff).Msg("dry run, nothing deleted")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	purged, err := repository.NewStudioRepository(db).PurgeDeleted(ctx, cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("purge failed")
	}

	log.Info().Int64("studios", purged).Time("cutoff", cutoff).Msg("purge completed")
}
