package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"entangled_chess/internal/sim"
	"entangled_chess/internal/store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	var cfg sim.Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse config")
	}

	var db *store.Store
	if cfg.DBPath != "" {
		var err error
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open store")
		}
		defer db.Close()
	}

	runner, err := sim.NewRunner(cfg, log, db)
	if err != nil {
		log.Fatal().Err(err).Msg("configure runner")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("batch failed")
	}

	log.Info().
		Int("white_wins", summary.WhiteWins).
		Int("black_wins", summary.BlackWins).
		Int("draws", summary.Draws).
		Msg("done")
}
