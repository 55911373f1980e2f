package main

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"entangled_chess/internal/httpx"
	"entangled_chess/internal/store"
)

type config struct {
	Addr   string `env:"EC_ADDR" envDefault:":8080"`
	DBPath string `env:"EC_DB"`
	Pretty bool   `env:"EC_PRETTY_LOG"`
	Debug  bool   `env:"EC_DEBUG"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("parse config")
	}

	log := newLogger(cfg)

	var db *store.Store
	if cfg.DBPath != "" {
		var err error
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open store")
		}
		defer db.Close()
		log.Info().Str("path", cfg.DBPath).Msg("store opened")
	}

	srv := httpx.NewServer(log, db)
	if err := srv.Listen(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
