package main

import (
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"medstock-agent/internal/config"
	"medstock-agent/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MEDSTOCK_CONFIG"))
	if err != nil {
		fallback := logger.New("prod")
		fallback.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.App.Env)

	sqlDB, err := goose.OpenDBWithDriver("postgres", cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() { _ = sqlDB.Close() }()

	dir := "migrations"
	if len(os.Args) > 1 && os.Args[1] == "down" {
		if err := goose.Down(sqlDB, dir); err != nil {
			log.Fatal().Err(err).Msg("migration down failed")
		}
		log.Info().Msg("rolled back one migration")
		return
	}

	if err := goose.Up(sqlDB, dir); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("migrations applied")
}
