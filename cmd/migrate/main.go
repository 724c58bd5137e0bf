package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gurkanbulca/projecttracker/internal/config"
	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.Environment)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.ToDatabaseConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("migrations completed successfully")
}
