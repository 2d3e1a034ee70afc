package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"fideliza/internal/config"
	pg "fideliza/internal/infra/db/postgres"
	"fideliza/internal/infra/logging"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 1, "migrations to roll back with -down")

	cfg, err := config.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	if *down {
		if err := pg.RollbackMigrations(cfg.Database.URL, *steps, logger); err != nil {
			logger.Fatal().Err(err).Int("steps", *steps).Msg("rollback")
		}
		return
	}
	if err := pg.RunMigrations(cfg.Database.URL, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
}
